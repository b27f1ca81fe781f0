package wire

import (
	"errors"
	"fmt"

	"utter/internal/domain"
)

// ErrorCode classifies an error frame.
type ErrorCode string

const (
	CodeProtocol             ErrorCode = "protocol_error"
	CodeNotRegistered        ErrorCode = "not_registered"
	CodeRecipientUnavailable ErrorCode = "recipient_unavailable"
	CodeUnauthorized         ErrorCode = "unauthorized"
)

// ProtocolError is a rejected frame. The connection stays open.
type ProtocolError struct {
	Code        ErrorCode
	Message     string
	RecipientID domain.DeviceID
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a *ProtocolError with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *ProtocolError {
	return &ProtocolError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RecipientUnavailable reports that to is not in the directory.
func RecipientUnavailable(to domain.DeviceID) *ProtocolError {
	return &ProtocolError{
		Code:        CodeRecipientUnavailable,
		Message:     fmt.Sprintf("recipient %s is not connected", to),
		RecipientID: to,
	}
}

// ErrorMessage encodes err as an error frame. Errors that are not a
// *ProtocolError are reported as protocol_error.
func ErrorMessage(err error) Message {
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		pe = &ProtocolError{Code: CodeProtocol, Message: err.Error()}
	}
	return Message{
		Type:        TypeError,
		Code:        pe.Code,
		Reason:      pe.Message,
		RecipientID: pe.RecipientID,
	}
}

// Err returns the *ProtocolError carried by an error frame, or nil.
func (m Message) Err() *ProtocolError {
	if m.Type != TypeError {
		return nil
	}
	code := m.Code
	if code == "" {
		code = CodeProtocol
	}
	return &ProtocolError{Code: code, Message: m.Reason, RecipientID: m.RecipientID}
}

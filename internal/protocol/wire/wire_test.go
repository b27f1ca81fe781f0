package wire_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"utter/internal/domain"
	"utter/internal/protocol/wire"
)

func sampleEnvelope() domain.Envelope {
	var epk domain.X25519Public
	for i := range epk {
		epk[i] = byte(i)
	}
	return domain.Envelope{
		SenderID:           "a1",
		RecipientID:        "b1",
		Ciphertext:         []byte("opaque-ciphertext-with-tag"),
		Nonce:              bytes.Repeat([]byte{7}, 12),
		EphemeralPublicKey: epk,
		Timestamp:          1700000000000,
	}
}

func TestEnvelopeFieldNames(t *testing.T) {
	b, err := wire.Encode(wire.FromEnvelope(sampleEnvelope()))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Equal(t, "message", raw["type"])
	require.Equal(t, "a1", raw["from"])
	require.Equal(t, "b1", raw["to"])
	require.Equal(t, "BwcHBwcHBwcHBwcH", raw["nonce"])
	require.Equal(t, true, raw["encrypted"])
	require.Contains(t, raw, "ephemeralPublicKey")
	require.Contains(t, raw, "content")
	require.NotContains(t, raw, "devices")
}

func TestEnvelopeThroughFrame(t *testing.T) {
	env := sampleEnvelope()
	b, err := wire.Encode(wire.FromEnvelope(env))
	require.NoError(t, err)

	m, err := wire.Decode(b)
	require.NoError(t, err)
	require.True(t, m.IsEncrypted())

	got, err := m.Envelope()
	require.NoError(t, err)
	require.Equal(t, env, got)
}

func TestValidateEnvelope(t *testing.T) {
	good := wire.FromEnvelope(sampleEnvelope())
	require.NoError(t, wire.ValidateEnvelope(good))

	cases := map[string]func(m *wire.Message){
		"no recipient":   func(m *wire.Message) { m.To = "" },
		"no content":     func(m *wire.Message) { m.Content = nil },
		"short nonce":    func(m *wire.Message) { m.Nonce = m.Nonce[:8] },
		"short eph key":  func(m *wire.Message) { m.EphemeralPublicKey = m.EphemeralPublicKey[:31] },
		"missing nonce":  func(m *wire.Message) { m.Nonce = nil },
		"wrong msg type": func(m *wire.Message) { m.Type = wire.TypePing },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := wire.FromEnvelope(sampleEnvelope())
			mutate(&m)
			err := wire.ValidateEnvelope(m)
			var pe *wire.ProtocolError
			require.True(t, errors.As(err, &pe))
			require.Equal(t, wire.CodeProtocol, pe.Code)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := wire.Decode([]byte("{not json"))
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, wire.CodeProtocol, pe.Code)

	_, err = wire.Decode([]byte(`{"to":"b1"}`))
	require.ErrorAs(t, err, &pe)
}

func TestRegisterDevice_LegacyClientType(t *testing.T) {
	m, err := wire.Decode([]byte(`{"type":"register","deviceId":"d1","clientType":"target"}`))
	require.NoError(t, err)

	dev := m.Device()
	require.Equal(t, domain.DeviceTypeTarget, dev.Type)
	require.Equal(t, "d1", dev.Name)
	require.False(t, dev.HasPublicKey())
}

func TestErrorFrames(t *testing.T) {
	m := wire.ErrorMessage(wire.RecipientUnavailable("ghost"))
	require.Equal(t, wire.TypeError, m.Type)
	require.Equal(t, wire.CodeRecipientUnavailable, m.Code)
	require.Equal(t, domain.DeviceID("ghost"), m.RecipientID)

	pe := m.Err()
	require.NotNil(t, pe)
	require.Equal(t, domain.DeviceID("ghost"), pe.RecipientID)

	plain := wire.ErrorMessage(errors.New("boom"))
	require.Equal(t, wire.CodeProtocol, plain.Code)
	require.Equal(t, "boom", plain.Reason)

	require.Nil(t, wire.Pong().Err())
}

func TestStampFromKeepsOtherFields(t *testing.T) {
	out, err := wire.StampFrom([]byte(`{"type":"message","to":"b1","extra":[1,2]}`), "a1")
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"message","to":"b1","extra":[1,2],"from":"a1"}`, string(out))

	_, err = wire.StampFrom([]byte(`not json`), "a1")
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, wire.CodeProtocol, pe.Code)
}

func TestEncodePrefersRaw(t *testing.T) {
	raw := []byte(`{"type":"message","custom":true}`)
	out, err := wire.Encode(wire.Message{Type: wire.TypePing, Raw: raw})
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

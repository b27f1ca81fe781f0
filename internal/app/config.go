package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client runtime options.
type Config struct {
	Home           string // config directory, e.g. $HOME/.utter
	RelayURL       string // relay WebSocket URL, e.g. ws://127.0.0.1:8080
	DeviceID       string
	DeviceName     string
	DeviceType     string // controller|target
	ReconnectDelay time.Duration
	PingInterval   time.Duration // client keepalive ping cadence
	PongTimeout    time.Duration // grace added to PingInterval before the socket is dead
	Token          string        // presented at registration when the relay requires one
	Passphrase     string        // seals the identity key at rest when set
}

// RelayConfig holds relay runtime options.
type RelayConfig struct {
	Addr         string
	PingInterval time.Duration
	PongTimeout  time.Duration
	CloseTimeout time.Duration
	SendBuffer   int
	AuthTokens   []string // empty trusts every registration
}

// LoadConfig reads client configuration from the environment, loading a
// .env file from the working directory first if there is one.
func LoadConfig() Config {
	_ = godotenv.Load()

	host, _ := os.Hostname()
	if host == "" {
		host = "utter-device"
	}
	home := os.Getenv("UTTER_HOME")
	if home == "" {
		if dir, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(dir, ".utter")
		} else {
			home = ".utter"
		}
	}

	return Config{
		Home:           home,
		RelayURL:       getEnv("UTTER_RELAY_URL", "ws://localhost:8080"),
		DeviceID:       getEnv("UTTER_DEVICE_ID", host),
		DeviceName:     getEnv("UTTER_DEVICE_NAME", host),
		DeviceType:     getEnv("UTTER_DEVICE_TYPE", "controller"),
		ReconnectDelay: getEnvDuration("UTTER_RECONNECT_DELAY", 5*time.Second),
		PingInterval:   getEnvDuration("UTTER_PING_INTERVAL", 20*time.Second),
		PongTimeout:    getEnvDuration("UTTER_PONG_TIMEOUT", 10*time.Second),
		Token:          os.Getenv("UTTER_TOKEN"),
		Passphrase:     os.Getenv("UTTER_PASSPHRASE"),
	}
}

// LoadRelayConfig reads relay configuration from the environment.
func LoadRelayConfig() RelayConfig {
	_ = godotenv.Load()

	return RelayConfig{
		Addr:         getEnv("UTTER_RELAY_ADDR", ":8080"),
		PingInterval: getEnvDuration("UTTER_PING_INTERVAL", 20*time.Second),
		PongTimeout:  getEnvDuration("UTTER_PONG_TIMEOUT", 10*time.Second),
		CloseTimeout: getEnvDuration("UTTER_CLOSE_TIMEOUT", 5*time.Second),
		SendBuffer:   getEnvInt("UTTER_SEND_BUFFER", 64),
		AuthTokens:   SplitList(os.Getenv("UTTER_AUTH_TOKENS")),
	}
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

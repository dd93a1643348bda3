package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Development fallbacks. Load warns when any of them is in effect.
const (
	defaultJWTSecret = "fallback_secret"
	defaultAESKey    = "defaultsecretkey"
	defaultAESIV     = "defaultivvalue16"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	Port         string
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	AESKey       string
	AESIV        string
	StoreTimeout time.Duration

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	LoginRateLimit int
	CORSOrigins    []string
	EnsureIndexes  bool
	TrustProxy     bool

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "admin_db"),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		AESKey:          getEnv("AES_SECRET_KEY", defaultAESKey),
		AESIV:           getEnv("AES_IV", defaultAESIV),
		StoreTimeout:    getDuration("STORE_TIMEOUT", 10*time.Second),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "fleet-admin"),
		MQTTTopicPrefix: strings.TrimSuffix(getEnv("MQTT_TOPIC_PREFIX", "fleet/admin"), "/"),
		LoginRateLimit:  getInt("LOGIN_RATE_LIMIT", 10),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		EnsureIndexes:   getBool("ENSURE_INDEXES", true),
		TrustProxy:      getBool("TRUST_PROXY", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
	return cfg
}

// UsesDefaultSecrets reports whether any secret fell back to its
// development value.
func (c *Config) UsesDefaultSecrets() bool {
	return c.JWTSecret == defaultJWTSecret || c.AESKey == defaultAESKey || c.AESIV == defaultAESIV
}

// ConfigureLogger applies the level and format to the standard logrus logger.
func (c *Config) ConfigureLogger(l *log.Logger) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)
	if c.LogFormat == "json" {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

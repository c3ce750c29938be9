package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
database:
  host: db
  name: dental
jwt:
  secret: file-secret
  expiry: 2h
lifecycle:
  sweep_interval: 1m
broker:
  driver: kafka
  kafka:
    brokers: ["k1:9092", "k2:9092"]
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, time.Minute, cfg.Lifecycle.SweepInterval)
	assert.Equal(t, "kafka", cfg.Broker.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "orthodontic-consents", cfg.Storage.Bucket)
	assert.Equal(t, "America/Mexico_City", cfg.Clinic.TimeZone)
	assert.Equal(t, 8081, cfg.Worker.HealthPort)
}

func TestLoadConfigSecretsOverrideFile(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: file-secret
database:
  password: file-password
`)
	t.Setenv("DENTAL_JWT_SECRET", "env-secret")
	t.Setenv("DENTAL_DATABASE_PASSWORD", "env-password")
	t.Setenv("DENTAL_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-password", cfg.Database.Password)
	assert.Len(t, cfg.Security.EncryptionKey, 32)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing jwt secret", "server:\n  port: 8080\n"},
		{"bad encryption key", "jwt:\n  secret: s\nsecurity:\n  encryption_key: short\n"},
		{"bad time zone", "jwt:\n  secret: s\nclinic:\n  time_zone: Mars/Olympus\n"},
		{"bad broker", "jwt:\n  secret: s\nbroker:\n  driver: carrier-pigeon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}

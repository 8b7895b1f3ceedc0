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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ReadsYAMLOnTopOfDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  port: 9090
mongodb:
  uri: mongodb://mongo:27017
  database: orders
auth:
  jwt_secret: s3cret
order:
  timezone: Asia/Kathmandu
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Gateway.Port)
	assert.Equal(t, "0.0.0.0", cfg.Gateway.Host)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoDB.URI)
	assert.Equal(t, "orders", cfg.MongoDB.Database)
	assert.Equal(t, 5*time.Second, cfg.MongoDB.OpTimeout)
	assert.Equal(t, "Asia/Kathmandu", cfg.Order.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Order.CheckoutLockTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: from-file
`)
	t.Setenv("FOODDASH_AUTH_JWT_SECRET", "from-env")
	t.Setenv("FOODDASH_GATEWAY_PORT", "7070")
	t.Setenv("FOODDASH_MONGODB_OP_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 7070, cfg.Gateway.Port)
	assert.Equal(t, 2*time.Second, cfg.MongoDB.OpTimeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("FOODDASH_AUTH_JWT_SECRET", "x")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, "UTC", cfg.Order.Timezone)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, "gateway:\n  port: 8081\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestValidate_RejectsUnknownTimezone(t *testing.T) {
	cfg := &Config{
		Auth:    AuthConfig{JWTSecret: "x"},
		MongoDB: MongoDBConfig{URI: "mongodb://localhost", Database: "db"},
		Order:   OrderConfig{Timezone: "Mars/Olympus"},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsLocalTimezone(t *testing.T) {
	cfg := &Config{
		Auth:    AuthConfig{JWTSecret: "x"},
		MongoDB: MongoDBConfig{URI: "mongodb://localhost", Database: "db"},
		Order:   OrderConfig{Timezone: "Local"},
	}
	assert.ErrorContains(t, cfg.Validate(), "IANA")

	cfg.Order.Timezone = "Asia/Kathmandu"
	assert.NoError(t, cfg.Validate())
}

func TestMySQLDSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Port: 3306, Username: "u", Password: "p", Database: "fooddash"}
	assert.Equal(t, "u:p@tcp(db:3306)/fooddash?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())

	c.OpTimeout = 3 * time.Second
	assert.Equal(t, "u:p@tcp(db:3306)/fooddash?charset=utf8mb4&parseTime=True&loc=Local&timeout=3s&readTimeout=3s&writeTimeout=3s", c.DSN())
}

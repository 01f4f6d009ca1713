package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvAndDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "dev", cfg.GoEnv)
}

// .envの値は既存の環境変数を上書きしない
func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nPOSTGRES_DB=farm\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Setenv("POSTGRES_DB", "")
	require.NoError(t, os.Unsetenv("POSTGRES_DB"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Contains(t, cfg.DSN(), "dbname=farm")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ok", cfg: Config{JWTSecret: "x", AccessTokenTTL: time.Hour}},
		{name: "secretなし", cfg: Config{AccessTokenTTL: time.Hour}, wantErr: true},
		{name: "prodで短いsecret", cfg: Config{JWTSecret: "short", GoEnv: "prod", AccessTokenTTL: time.Hour}, wantErr: true},
		{name: "TTLが0", cfg: Config{JWTSecret: "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN_PrefersDatabaseURL(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://u:p@db:5432/x", PostgresHost: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
	assert.Equal(t, ":8080", Config{Port: ":8080"}.Addr())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "DATABASE_DSN", "MIGRATIONS", "CMS_BASE_URL", "SERVER_READ_TIMEOUT", "APP_ENV"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=localhost port=5432 user=cantine password=cantine dbname=menu sslmode=disable", cfg.Database.DSN())
	assert.False(t, cfg.App.Migrations)
	assert.True(t, cfg.App.Dev())
	assert.Empty(t, cfg.CMS.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "file:test.db")
	t.Setenv("DB_SEED", "yes")
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	t.Setenv("SERVER_WRITE_TIMEOUT", "2m")
	t.Setenv("SERVER_IDLE_TIMEOUT", "soon")
	t.Setenv("CMS_BASE_URL", "https://cms.example.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN())
	assert.True(t, cfg.App.Seed)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout, "unparsable values fall back to the default")
	assert.Equal(t, "https://cms.example.com", cfg.CMS.BaseURL)
}

func TestMigrationURL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "menu", Password: "p@ss", DBName: "menu", SSLMode: "require"}
	assert.Equal(t, "postgres://menu:p%40ss@db:5433/menu?sslmode=require", d.MigrationURL())

	d.URL = "postgres://u:p@h:5432/x?sslmode=disable"
	assert.Equal(t, d.URL, d.MigrationURL())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported DATABASE_DRIVER"},
		{name: "SQL migrations on sqlite", mutate: func(c *Config) { c.Database.Driver = DriverSQLite; c.App.Migrations = true }, wantErr: "MIGRATIONS requires"},
		{name: "Default secret in production", mutate: func(c *Config) { c.App.Env = "production" }, wantErr: "SESSION_SECRET"},
		{name: "Production with secret", mutate: func(c *Config) { c.App.Env = "production"; c.Session.Secret = "s3cret" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			cfg := Load()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

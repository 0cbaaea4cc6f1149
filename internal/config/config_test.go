package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

const minimalConfig = `
api:
  environment: test
  port: "8081"
  jwt_signing_key: 0123456789abcdef0123
gin:
  mode: test
postgres:
  host: db
  user: app
  db: events
`

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", conf.API.Environment)
	assert.Equal(t, "8081", conf.API.Port)
	assert.Equal(t, 24*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, "test", conf.Gin.Mode)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "5432", conf.Postgres.Port)
	assert.Equal(t, 10, conf.Listing.EventsPageSize)
	assert.Equal(t, 10, conf.Listing.UsersPageSize)
	assert.Equal(t, 100, conf.Listing.AdminPageSize)
	assert.Empty(t, conf.Admin.Username)
	assert.Equal(t, "host=db port=5432 user=app password= dbname=events sslmode=disable", conf.Postgres.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("LISTING_EVENTS_PAGE_SIZE", "25")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	conf, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, 25, conf.Listing.EventsPageSize)
	assert.Equal(t, "secret", conf.Postgres.Password)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "short signing key",
			content: `
api:
  environment: test
  jwt_signing_key: short
gin:
  mode: test
`,
		},
		{
			name: "unknown gin mode",
			content: `
api:
  environment: test
  jwt_signing_key: 0123456789abcdef0123
gin:
  mode: turbo
`,
		},
		{
			name: "admin without password",
			content: minimalConfig + `
admin:
  username: root
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
server:
  host: "127.0.0.1"
  port: 9090

database:
  path: "./data/approvalflow.db"

email:
  base_url: "https://mail.example.com"
  api_key: "email-key"
  from_address: "approvals@mwangaza.org"
  from_name: "Approvals"

sms:
  base_url: "https://sms.example.com"
  api_key: "sms-key"
  sender_id: "MWANGAZA"

approvals:
  acceptance_code_ttl: 5m
  role_mappings:
    hod: department_head

voucher:
  company_name: "Mwangaza Development Trust"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "./data/approvalflow.db", cfg.Database.Path)
	assert.Equal(t, "approvals@mwangaza.org", cfg.Email.FromAddress)
	assert.Equal(t, "MWANGAZA", cfg.SMS.SenderID)
	assert.Equal(t, 5*time.Minute, cfg.Approvals.AcceptanceCodeTTL)
	assert.Equal(t, "department_head", cfg.Approvals.RoleMappings["hod"])
	assert.Equal(t, "Mwangaza Development Trust", cfg.Voucher.CompanyName)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	// Not set in the file; must come from defaults.
	assert.NotZero(t, cfg.Server.ReadTimeout)
	assert.NotZero(t, cfg.Database.MaxOpenConns)
	assert.NotEmpty(t, cfg.Database.MigrationsDir)
	assert.NotEmpty(t, cfg.Logger.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		drop string
	}{
		{name: "missing email api key", drop: `  api_key: "email-key"`},
		{name: "missing sms base url", drop: `  base_url: "https://sms.example.com"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := strings.Replace(validConfig, tt.drop+"\n", "", 1)
			_, err := Load(writeConfig(t, broken))
			assert.Error(t, err)
		})
	}
}

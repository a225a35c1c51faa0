package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "data", cfg.Data.Dir)
				assert.Equal(t, CacheModeModTime, cfg.Data.CacheMode)
				assert.Equal(t, 10, cfg.Data.StateTopN)
				assert.Equal(t, 10, cfg.Data.DistrictTopN)
				assert.Equal(t, 50, cfg.Data.PincodeTopN)
				assert.Equal(t, 10, cfg.Data.HeatColumns)
				assert.Equal(t, "UIDAI Aadhaar Dashboard", cfg.Dashboard.Title)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "yaml file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
data:
  dir: /srv/enrolments
  cache_mode: process
  pincode_top_n: 20
dashboard:
  subtitle: Pilot
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "/srv/enrolments", cfg.Data.Dir)
				assert.Equal(t, CacheModeProcess, cfg.Data.CacheMode)
				assert.Equal(t, 20, cfg.Data.PincodeTopN)
				assert.Equal(t, "Pilot", cfg.Dashboard.Subtitle)
				// untouched sections keep their defaults
				assert.Equal(t, 10, cfg.Data.StateTopN)
				assert.Equal(t, DefaultTitle, cfg.Dashboard.Title)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"ENROLPULSE_SERVER_PORT":    "7070",
				"ENROLPULSE_DATA_DIR":       "fixtures",
				"ENROLPULSE_LOGGING_LEVEL":  "debug",
				"ENROLPULSE_LOGGING_OUTPUT": "console",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "fixtures", cfg.Data.Dir)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "stdout", cfg.Logging.Output)
			},
		},
		{
			name:    "invalid port rejected",
			env:     map[string]string{"ENROLPULSE_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown cache mode rejected",
			file:    "data:\n  cache_mode: forever\n",
			wantErr: true,
		},
		{
			name:    "zero top-n rejected",
			env:     map[string]string{"ENROLPULSE_DATA_PINCODE_TOP_N": "0"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestGetConfigFilePath_Explicit(t *testing.T) {
	t.Setenv("ENROLPULSE_CONFIG", "/etc/enrolpulse.yaml")
	assert.Equal(t, "/etc/enrolpulse.yaml", getConfigFilePath())
}

func TestAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8181
	assert.Equal(t, "127.0.0.1:8181", cfg.Address())
}

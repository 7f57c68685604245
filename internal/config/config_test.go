package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfigPath(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	if cfg.Auth.Provider.URL == "" {
		t.Error("Auth.Provider.URL should not be empty")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Webserver.ShutDownTime != defaultShutDownTime {
		t.Errorf("ShutDownTime = %d, want default %d", cfg.Webserver.ShutDownTime, defaultShutDownTime)
	}

	if cfg.Auth.Provider.Timeout != defaultProviderTimeout {
		t.Errorf("Provider.Timeout = %v, want default %v", cfg.Auth.Provider.Timeout, defaultProviderTimeout)
	}

	if cfg.Webserver.Session.ExpiryTime != defaultSessionExpiry {
		t.Errorf("Session.ExpiryTime = %v, want default %v", cfg.Webserver.Session.ExpiryTime, defaultSessionExpiry)
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	t.Setenv("JOBBOARD_CONFIG_JSON", `{"Title":"Overridden","Webserver":{"Port":8081}}`)

	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Overridden" {
		t.Errorf("Title = %q, want env override", cfg.Title)
	}

	if cfg.Webserver.Port != 8081 {
		t.Errorf("Port = %d, want env override 8081", cfg.Webserver.Port)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir() + string(filepath.Separator))
	if err == nil {
		t.Fatal("ReadConfig() expected error for missing config file")
	}
}

func TestConfigValidation(t *testing.T) {
	valid := Config{
		Webserver: Webserver{
			Port: 3000,
			URL:  "http://localhost:3000",
		},
		Auth: Auth{Provider: Provider{URL: "http://localhost:9999", Timeout: time.Second}},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Webserver.Port = 0 },
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.Webserver.URL = "" },
			wantErr: ErrEmptyURL,
		},
		{
			name:    "empty provider url",
			mutate:  func(c *Config) { c.Auth.Provider.URL = "" },
			wantErr: ErrEmptyProviderURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := validate(&cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("validate() error = %v, want nil", err)
				}

				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.wantErr.Error()) {
				t.Fatalf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDumpConfig(t *testing.T) {
	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	tomlDump, err := DumpConfig(cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if !strings.Contains(tomlDump, "JobBoard") {
		t.Error("DumpConfig() should contain the title")
	}

	jsonDump, err := DumpConfigJSON(cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	if !strings.Contains(jsonDump, "JobBoard") {
		t.Error("DumpConfigJSON() should contain the title")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigDir(t *testing.T, configYAML, tokensYAML string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatalf("write config.yaml: %v", err)
	}
	if tokensYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "tokens.yaml"), []byte(tokensYAML), 0600); err != nil {
			t.Fatalf("write tokens.yaml: %v", err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		tokens  string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal valid config",
			yaml: `
state:
  path: ./test.db
harness:
  armed: true
  max_command_bytes: 31
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "./test.db" {
					t.Error("state.path not parsed")
				}
				if !cfg.Harness.Armed {
					t.Error("harness.armed not parsed")
				}
				if cfg.Harness.MaxCommandBytes != 31 {
					t.Error("harness.max_command_bytes not parsed")
				}
				// Defaults applied
				if cfg.Service.Name != "faultline" {
					t.Error("default service.name not applied")
				}
				if cfg.Service.LogLevel != "info" {
					t.Error("default log_level not applied")
				}
				if cfg.Events.Buffer != 256 {
					t.Error("default events.buffer not applied")
				}
				if cfg.API.Enabled {
					t.Error("api must default to disabled")
				}
			},
		},
		{
			name: "empty config gets all defaults",
			yaml: "service: {}\n",
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Harness.Armed {
					t.Error("harness must default to disarmed")
				}
				if cfg.Harness.MaxCommandBytes != 31 {
					t.Error("default max_command_bytes not applied")
				}
				if cfg.State.Path == "" {
					t.Error("default state.path not applied")
				}
			},
		},
		{
			name: "env var interpolation",
			yaml: `
state:
  path: ${JOURNAL_PATH}
`,
			env: map[string]string{"JOURNAL_PATH": "/tmp/journal.db"},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "/tmp/journal.db" {
					t.Errorf("env var not interpolated: %q", cfg.State.Path)
				}
			},
		},
		{
			name: "control file resolved to absolute path",
			yaml: `
harness:
  control_file: ./run/ctl
  catalog_file: ./run/catalog
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if !filepath.IsAbs(cfg.Harness.ControlFile) {
					t.Errorf("control_file not absolute: %q", cfg.Harness.ControlFile)
				}
				if !filepath.IsAbs(cfg.Harness.CatalogFile) {
					t.Errorf("catalog_file not absolute: %q", cfg.Harness.CatalogFile)
				}
			},
		},
		{
			name: "tokens grafted from tokens.yaml",
			yaml: `
api:
  enabled: true
  listen: 127.0.0.1:9999
`,
			tokens: `
tokens:
  - name: ops
    token: secret-abc
    scopes: ["trigger:*"]
  - name: viewer
    token: secret-def
    scopes: ["read"]
`,
			checkFn: func(t *testing.T, cfg *Config) {
				all := cfg.AllTokens()
				if len(all) != 2 {
					t.Fatalf("expected 2 tokens, got %d", len(all))
				}
				if all[0].Name != "ops" || all[0].Token != "secret-abc" {
					t.Errorf("first token not grafted: %+v", all[0])
				}
			},
		},
		{
			name:    "invalid log level",
			yaml:    "service:\n  log_level: loud\n",
			wantErr: "service.log_level",
		},
		{
			name:    "command cap above capacity",
			yaml:    "harness:\n  max_command_bytes: 64\n",
			wantErr: "harness.max_command_bytes",
		},
		{
			name:    "command cap below one",
			yaml:    "harness:\n  max_command_bytes: -1\n",
			wantErr: "harness.max_command_bytes",
		},
		{
			name:    "api enabled without tokens",
			yaml:    "api:\n  enabled: true\n  listen: 127.0.0.1:9999\n",
			wantErr: "at least one token",
		},
		{
			name: "invalid scope syntax",
			yaml: "service: {}\n",
			tokens: `
tokens:
  - name: bad
    token: secret
    scopes: ["launch:missiles"]
`,
			wantErr: "invalid scope",
		},
		{
			name: "unresolved env var in token",
			yaml: "service: {}\n",
			tokens: `
tokens:
  - name: ops
    token: ${FAULTLINE_UNSET_TOKEN}
    scopes: ["read"]
`,
			wantErr: "FAULTLINE_UNSET_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			dir := writeConfigDir(t, tt.yaml, tt.tokens)
			// A tokens.yaml only loads from a locked directory.
			if tt.tokens != "" {
				if _, err := Lock(dir, false); err != nil {
					t.Fatalf("lock: %v", err)
				}
			}

			cfg, warnings, err := Load(dir)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %q", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.tokens == "" {
				// Unlocked without tokens: integrity reports a warning.
				if len(warnings) == 0 {
					t.Error("expected an unlocked-config warning")
				}
			} else if len(warnings) != 0 {
				t.Errorf("expected no warnings from a locked config, got %v", warnings)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadAcceptsFilePathOrDirectory(t *testing.T) {
	dir := writeConfigDir(t, "state:\n  path: ./x.db\n", "")

	if _, _, err := Load(dir); err != nil {
		t.Fatalf("load by directory: %v", err)
	}
	if _, _, err := Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("load by file: %v", err)
	}
	if _, _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigDirIsRecorded(t *testing.T) {
	dir := writeConfigDir(t, "service: {}\n", "")

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigDir != dir {
		t.Fatalf("expected ConfigDir %q, got %q", dir, cfg.ConfigDir)
	}
}

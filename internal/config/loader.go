package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var (
	envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	scopePattern  = regexp.MustCompile(`^(read|\*|trigger:\*|trigger:[A-Z][A-Z0-9_]*)$`)
)

// Load reads and parses configuration from a file or a directory holding
// config.yaml. Tokens are grafted from a sibling tokens.yaml when present,
// and both files are verified against the .checksums lock manifest.
// Returned warnings are integrity findings that did not block the load.
func Load(configPath string) (*Config, []string, error) {
	files, err := DiscoverConfigFiles(configPath)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadAndParseFile(files.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config.yaml: %w", err)
	}
	cfg.ConfigDir = files.Root

	if files.Tokens != "" {
		if err := graftTokens(cfg, files.Tokens); err != nil {
			return nil, nil, err
		}
	}

	cfg = applyConfigDefaults(cfg)

	intResult := VerifyIntegrity(files.Root, files, cfg.Integrity.Enforce)
	if !intResult.Passed {
		return nil, nil, fmt.Errorf("integrity verification failed:\n  %s\nRun 'faultline config lock' to authorize the current state",
			joinLines(intResult.Errors))
	}

	if err := validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, intResult.Warnings, nil
}

// loadAndParseFile reads a YAML file, interpolates env vars, and parses it.
func loadAndParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	interpolated := interpolateEnv(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// graftTokens loads token entries from tokens.yaml into cfg.
func graftTokens(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read tokens.yaml: %w", err)
	}
	interpolated := interpolateEnv(string(data))

	var tf TokensFileConfig
	if err := yaml.Unmarshal([]byte(interpolated), &tf); err != nil {
		return fmt.Errorf("failed to parse tokens.yaml: %w", err)
	}
	cfg.Tokens = append(cfg.Tokens, tf.Tokens...)
	return nil
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) *Config {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}

	if cfg.State.Path == "" {
		cfg.State.Path = defaults.State.Path
	}

	if cfg.Harness.MaxCommandBytes == 0 {
		cfg.Harness.MaxCommandBytes = defaults.Harness.MaxCommandBytes
	}

	if !cfg.API.Enabled && cfg.API.Listen == "" {
		cfg.API = defaults.API
	}

	if cfg.Events.Buffer == 0 {
		cfg.Events.Buffer = defaults.Events.Buffer
	}

	if cfg.Harness.ControlFile != "" && !filepath.IsAbs(cfg.Harness.ControlFile) {
		if abs, err := filepath.Abs(cfg.Harness.ControlFile); err == nil {
			cfg.Harness.ControlFile = abs
		}
	}
	if cfg.Harness.CatalogFile != "" && !filepath.IsAbs(cfg.Harness.CatalogFile) {
		if abs, err := filepath.Abs(cfg.Harness.CatalogFile); err == nil {
			cfg.Harness.CatalogFile = abs
		}
	}

	return cfg
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is and caught by validation.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[cfg.Service.LogFormat] {
		return fmt.Errorf("service.log_format must be one of: json, text (got %q)", cfg.Service.LogFormat)
	}

	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}

	if cfg.Harness.MaxCommandBytes < 1 || cfg.Harness.MaxCommandBytes > 31 {
		return fmt.Errorf("harness.max_command_bytes must be between 1 and 31 (got %d)", cfg.Harness.MaxCommandBytes)
	}

	if cfg.Events.Buffer < 1 {
		return fmt.Errorf("events.buffer must be positive (got %d)", cfg.Events.Buffer)
	}

	if cfg.API.Enabled {
		if cfg.API.Listen == "" {
			return fmt.Errorf("api.listen is required when api.enabled is true")
		}
		if len(allTokens(cfg)) == 0 {
			return fmt.Errorf("api.enabled requires at least one token in api.auth.tokens or tokens.yaml")
		}
	}

	for i, tok := range allTokens(cfg) {
		if tok.Token == "" {
			return fmt.Errorf("tokens[%d]: token is required", i)
		}
		if envVarPattern.MatchString(tok.Token) {
			matches := envVarPattern.FindStringSubmatch(tok.Token)
			if len(matches) > 1 {
				return fmt.Errorf("tokens[%d]: environment variable ${%s} is not set", i, matches[1])
			}
			return fmt.Errorf("tokens[%d]: unresolved environment variable", i)
		}
		if len(tok.Scopes) == 0 {
			return fmt.Errorf("tokens[%d] (%s): scopes must be non-empty", i, tok.Name)
		}
		for _, s := range tok.Scopes {
			if !scopePattern.MatchString(s) {
				return fmt.Errorf("tokens[%d] (%s): invalid scope %q (want read, *, trigger:* or trigger:<LABEL>)", i, tok.Name, s)
			}
		}
	}

	return nil
}

// AllTokens merges inline api.auth.tokens with tokens.yaml entries.
func (c *Config) AllTokens() []APIToken {
	return allTokens(c)
}

func allTokens(cfg *Config) []APIToken {
	out := make([]APIToken, 0, len(cfg.API.Auth.Tokens)+len(cfg.Tokens))
	out = append(out, cfg.API.Auth.Tokens...)
	out = append(out, cfg.Tokens...)
	return out
}

func joinLines(lines []string) string {
	result := ""
	for i, line := range lines {
		if i > 0 {
			result += "\n  "
		}
		result += line
	}
	return result
}

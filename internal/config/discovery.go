package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFiles is the manifest of discovered configuration files.
type ConfigFiles struct {
	// Root is the absolute config directory.
	Root string
	// Config is the absolute path to config.yaml.
	Config string
	// Tokens is the absolute path to tokens.yaml, empty when absent.
	Tokens string
}

// AllFiles returns every discovered file, config.yaml first.
func (cf *ConfigFiles) AllFiles() []string {
	files := []string{cf.Config}
	if cf.Tokens != "" {
		files = append(files, cf.Tokens)
	}
	return files
}

// DiscoverConfigDir locates the config directory when no --config flag was
// given: $FAULTLINE_CONFIG_DIR, then ~/.config/faultline, then
// /etc/faultline, then ./config.yaml.
func DiscoverConfigDir() (string, error) {
	if dir := os.Getenv("FAULTLINE_CONFIG_DIR"); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfigDir := filepath.Join(homeDir, ".config", "faultline")
		if _, err := os.Stat(userConfigDir); err == nil {
			return userConfigDir, nil
		}
	}

	systemConfigDir := "/etc/faultline"
	if _, err := os.Stat(systemConfigDir); err == nil {
		return systemConfigDir, nil
	}

	legacyConfigPath := "./config.yaml"
	if _, err := os.Stat(legacyConfigPath); err == nil {
		return legacyConfigPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $FAULTLINE_CONFIG_DIR, ~/.config/faultline, /etc/faultline, ./config.yaml)")
}

// DiscoverConfigFiles resolves a config path to its file manifest. The path
// may be config.yaml itself or a directory containing it. tokens.yaml is
// picked up from the same directory when present.
func DiscoverConfigFiles(configPath string) (*ConfigFiles, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if !fileExists(absPath) {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	cf := &ConfigFiles{
		Root:   filepath.Dir(absPath),
		Config: absPath,
	}

	if path := filepath.Join(cf.Root, "tokens.yaml"); fileExists(path) {
		cf.Tokens = path
	}

	return cf, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package config

// Config represents the complete faultline configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	State     StateConfig     `yaml:"state"`
	Harness   HarnessConfig   `yaml:"harness"`
	API       APIConfig       `yaml:"api,omitempty"`
	Events    EventsConfig    `yaml:"events,omitempty"`
	Integrity IntegrityConfig `yaml:"integrity,omitempty"`

	// Tokens come from the sibling tokens.yaml, never from config.yaml.
	Tokens []APIToken `yaml:"-"`

	// ConfigDir is the directory the config was loaded from.
	ConfigDir string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// StateConfig defines intent journal storage settings.
type StateConfig struct {
	Path string `yaml:"path"`
}

// HarnessConfig defines the fault harness itself.
type HarnessConfig struct {
	// Armed decides whether resolved commands reach their recipes.
	// A disarmed harness journals and publishes, then does nothing.
	Armed bool `yaml:"armed"`
	// MaxCommandBytes caps accepted command length, 1 to 31.
	MaxCommandBytes int `yaml:"max_command_bytes"`
	// ControlFile enables the file trigger boundary when non-empty.
	ControlFile string `yaml:"control_file,omitempty"`
	// CatalogFile, when non-empty, is kept populated with the fault catalog.
	CatalogFile string `yaml:"catalog_file,omitempty"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken defines a named bearer token and its scopes.
type APIToken struct {
	Name   string   `yaml:"name"`
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// EventsConfig defines the in-memory event ring.
type EventsConfig struct {
	Buffer int `yaml:"buffer"`
}

// IntegrityConfig defines config tamper checking.
type IntegrityConfig struct {
	// Enforce turns integrity findings from warnings into load failures.
	Enforce bool `yaml:"enforce"`
}

// TokensFileConfig is the shape of tokens.yaml.
type TokensFileConfig struct {
	Tokens []APIToken `yaml:"tokens"`
}

// ChecksumManifest is the shape of the .checksums lock file.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// Defaults returns a Config with safe defaults. The harness starts
// disarmed and with no boundaries enabled.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "faultline",
			LogLevel:  "info",
			LogFormat: "json",
		},
		State: StateConfig{
			Path: "./data/journal.db",
		},
		Harness: HarnessConfig{
			Armed:           false,
			MaxCommandBytes: 31,
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8080",
		},
		Events: EventsConfig{
			Buffer: 256,
		},
		Integrity: IntegrityConfig{
			Enforce: false,
		},
	}
}

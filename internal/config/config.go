// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Bank    BankConfig    `yaml:"bank"`
	Convert ConvertConfig `yaml:"convert"`
	Logging LoggingConfig `yaml:"logging"`
}

// BankConfig locates the material bank.
type BankConfig struct {
	Path string `yaml:"path"` // .xml, .yaml or .toml
}

// ConvertConfig holds conversion settings.
type ConvertConfig struct {
	Backup  bool              `yaml:"backup"`  // Keep a .bak of overwritten files
	Verify  bool              `yaml:"verify"`  // Run the structural encoder before saving
	Mapping map[string]string `yaml:"mapping"` // Source MTD -> bank MTD for whole-file conversion
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	LogFile  string `yaml:"log_file"`
	CrashLog string `yaml:"crash_log"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bank: BankConfig{
			Path: "SapResources/FLVER2MaterialInfoBank/BankER.xml",
		},
		Convert: ConvertConfig{
			Backup:  true,
			Verify:  true,
			Mapping: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:    "info",
			LogFile:  "",
			CrashLog: "crash.log",
		},
	}
}

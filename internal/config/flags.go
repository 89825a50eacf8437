package config

import (
	"flag"
	"fmt"
	"strings"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagBank     = flag.String("bank", "", "Path to material bank (.xml, .yaml, .toml)")
	flagNoBackup = flag.Bool("no-backup", false, "Do not keep a .bak of overwritten files")
	flagNoVerify = flag.Bool("no-verify", false, "Skip the structural check before saving")
	flagLogFile  = flag.String("log-file", "", "Write logs to this file as well")
	flagMap      mappingFlag
)

func init() {
	flag.Var(&flagMap, "map", "Map a source MTD to a bank MTD as src=dst (repeatable)")
}

// mappingFlag collects repeated src=dst pairs.
type mappingFlag []string

func (m *mappingFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *mappingFlag) Set(value string) error {
	if _, _, err := ParseMappingPair(value); err != nil {
		return err
	}
	*m = append(*m, value)
	return nil
}

// ParseMappingPair splits a "src=dst" mapping. Both sides must be non-empty.
func ParseMappingPair(pair string) (src, dst string, err error) {
	src, dst, ok := strings.Cut(pair, "=")
	src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
	if !ok || src == "" || dst == "" {
		return "", "", fmt.Errorf("invalid mapping %q, want src=dst", pair)
	}
	return src, dst, nil
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBank != "" {
		cfg.Bank.Path = *flagBank
	}
	if *flagNoBackup {
		cfg.Convert.Backup = false
	}
	if *flagNoVerify {
		cfg.Convert.Verify = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if len(flagMap) > 0 && cfg.Convert.Mapping == nil {
		cfg.Convert.Mapping = map[string]string{}
	}
	for _, pair := range flagMap {
		// Validated by Set.
		src, dst, _ := ParseMappingPair(pair)
		cfg.Convert.Mapping[src] = dst
	}
}

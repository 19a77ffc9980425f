package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile = flag.String("log-file", "", "Also write logs to this file")
	flagTRS     = flag.Bool("trs", false, "Write node transforms as translation/rotation/scale")
	flagEpsilon = flag.Float64("epsilon", -1, "Identity tolerance for exported transforms")
	flagText    = flag.Bool("text", false, "Default to .gltf with a .bin side-file instead of .glb")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments remaining after flag parsing.
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
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagTRS {
		cfg.Export.TRS = true
	}
	if *flagEpsilon >= 0 {
		cfg.Export.Epsilon = *flagEpsilon
	}
	if *flagText {
		cfg.Export.Binary = false
	}
}

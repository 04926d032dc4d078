package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile  = flag.String("log-file", "", "Also write logs to this rotating file")
	flagWidth    = flag.Int("width", 0, "Preview width in pixels")
	flagHeight   = flag.Int("height", 0, "Preview height in pixels")
	flagShading  = flag.String("shading", "", "Preview shading: flat, normal, depth or checker")
	flagBrute    = flag.Bool("brute", false, "Use brute-force ray/triangle tests instead of precomputed duals")
	flagParallel = flag.Bool("parallel", false, "Intersect sub-meshes concurrently")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
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
	if *flagWidth > 0 {
		cfg.Preview.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Preview.Height = *flagHeight
	}
	if *flagShading != "" {
		cfg.Preview.Shading = *flagShading
	}
	if *flagBrute {
		cfg.Picking.UseDuals = false
	}
	if *flagParallel {
		cfg.Picking.Parallel = true
	}
}

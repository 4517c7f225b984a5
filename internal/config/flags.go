package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagStrict     = flag.Bool("strict", false, "Warn about tolerated legacy quirks")
	flagCrease     = flag.Float64("crease", 0, "Default crease angle in degrees")
	flagPrecision  = flag.Int("precision", 0, "Vertex coordinate digits on export")
	flagTextureDir = flag.String("texdir", "", "Fallback texture directory")
	flagWindowed   = flag.Bool("windowed", false, "Run the viewer in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run the viewer in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Viewer window width")
	flagHeight     = flag.Int("height", 0, "Viewer window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagStrict {
		cfg.Import.Strict = true
	}
	if *flagCrease > 0 {
		cfg.Import.DefaultCrease = float32(*flagCrease)
	}
	if *flagPrecision > 0 {
		cfg.Export.Precision = *flagPrecision
	}
	if *flagTextureDir != "" {
		cfg.Import.TextureDir = *flagTextureDir
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}

// Package config handles tool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Export  ExportConfig  `yaml:"export"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds .ac reading settings.
type ImportConfig struct {
	// DefaultCrease is the smoothing angle in degrees for objects whose
	// file carries no crease value.
	DefaultCrease float32 `yaml:"default_crease"`

	// Strict surfaces warnings for tolerated legacy quirks.
	Strict bool `yaml:"strict"`

	// TextureDir is the fallback directory searched for texture files
	// that are not found next to the model.
	TextureDir string `yaml:"texture_dir"`
}

// ExportConfig holds .ac writing settings.
type ExportConfig struct {
	// Precision is the fractional digit count for vertex coordinates.
	Precision int `yaml:"precision"`

	// Revision is the emitted format revision, "b" or "c".
	Revision string `yaml:"revision"`
}

// ViewerConfig holds display settings for the preview window.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			DefaultCrease: 30,
		},
		Export: ExportConfig{
			Precision: 7,
			Revision:  "b",
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

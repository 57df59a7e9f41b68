package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging and normals")
	flagLDraw     = flag.String("ldraw", "", "LDraw library folder")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagHeight    = flag.Int("height", 0, "Window height")
	flagMultiDraw = flag.Bool("multidraw", true, "Batch strips into multi-draw calls")
	flagStencil   = flag.Bool("stencil", true, "Draw conditional lines through the stencil pass")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// ModelPath returns the model file named on the command line, or "".
func ModelPath() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config. Boolean render
// switches only override when given explicitly.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.DrawNormals = true
	}
	if *flagLDraw != "" {
		cfg.Library.Path = *flagLDraw
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "multidraw":
			cfg.Render.MultiDraw = *flagMultiDraw
		case "stencil":
			cfg.Render.StencilConditionals = *flagStencil
		}
	})
}

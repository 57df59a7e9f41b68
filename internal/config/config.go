// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/loader"
	"github.com/Faultbox/brickview/internal/engine/model"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Geometry GeometryConfig `yaml:"geometry" toml:"geometry"`
	Library  LibraryConfig  `yaml:"library" toml:"library"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`

	Screenshot ScreenshotConfig `yaml:"screenshot" toml:"screenshot"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit" toml:"fps_limit"`
}

// RenderConfig holds the draw-time options shared by every shape group.
type RenderConfig struct {
	MultiDraw                bool    `yaml:"multi_draw" toml:"multi_draw"`
	StencilConditionals      bool    `yaml:"stencil_conditionals" toml:"stencil_conditionals"`
	VisibilityFlags          bool    `yaml:"visibility_flags" toml:"visibility_flags"`
	ShowAllConditional       bool    `yaml:"show_all_conditional" toml:"show_all_conditional"`
	ConditionalControlPoints bool    `yaml:"conditional_control_points" toml:"conditional_control_points"`
	DrawNormals              bool    `yaml:"draw_normals" toml:"draw_normals"`
	LineJoins                bool    `yaml:"line_joins" toml:"line_joins"`
	TransparencyThreshold    uint8   `yaml:"transparency_threshold" toml:"transparency_threshold"`
	FieldOfView              float32 `yaml:"fov" toml:"fov"`
	Background               string  `yaml:"background" toml:"background"`
}

// GeometryConfig holds the load-time model settings.
type GeometryConfig struct {
	BFC             bool `yaml:"bfc" toml:"bfc"`
	FlattenParts    bool `yaml:"flatten_parts" toml:"flatten_parts"`
	SortTransparent bool `yaml:"sort_transparent" toml:"sort_transparent"`
	Primitives      bool `yaml:"primitives" toml:"primitives"`
	CircleSegments  int  `yaml:"circle_segments" toml:"circle_segments"`
}

// LibraryConfig holds LDraw library paths.
type LibraryConfig struct {
	Path       string   `yaml:"path" toml:"path"`               // folder holding parts/ and p/
	SearchDirs []string `yaml:"search_dirs" toml:"search_dirs"` // extra folders, searched first
	Palette    string   `yaml:"palette" toml:"palette"`         // LDConfig.ldr, defaults to <path>/LDConfig.ldr
}

// ScreenshotConfig holds where screenshots are written.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir" toml:"dir"`
	Format string `yaml:"format" toml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	Format  string `yaml:"format" toml:"format"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: RenderConfig{
			MultiDraw:             true,
			StencilConditionals:   true,
			VisibilityFlags:       true,
			LineJoins:             true,
			TransparencyThreshold: 240,
			FieldOfView:           45,
			Background:            "#ffffff",
		},
		Geometry: GeometryConfig{
			BFC:             true,
			FlattenParts:    true,
			SortTransparent: true,
			Primitives:      true,
			CircleSegments:  16,
		},
		Library: LibraryConfig{
			Path: "~/ldraw",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Format: "png",
		},
	}
}

// GeometryOptions converts the render settings into shape-group options.
func (c *Config) GeometryOptions() *geometry.Options {
	return &geometry.Options{
		MultiDraw:                c.Render.MultiDraw,
		StencilConditionals:      c.Render.StencilConditionals,
		VisibilityFlags:          c.Render.VisibilityFlags,
		DrawNormals:              c.Render.DrawNormals,
		LineJoins:                c.Render.LineJoins,
		ShowAllConditional:       c.Render.ShowAllConditional,
		ConditionalControlPoints: c.Render.ConditionalControlPoints,
		TransparencyThreshold:    c.Render.TransparencyThreshold,
	}
}

// ModelSettings converts the geometry settings into main-model flags.
func (c *Config) ModelSettings() model.Settings {
	return model.Settings{
		BFC:             c.Geometry.BFC,
		FlattenParts:    c.Geometry.FlattenParts,
		SortTransparent: c.Geometry.SortTransparent,
	}
}

// LoaderOptions returns the loader options for this config. The palette is
// left for the caller to load.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		Geometry:   c.GeometryOptions(),
		Settings:   c.ModelSettings(),
		Primitives: c.Geometry.Primitives,
		Segments:   c.Geometry.CircleSegments,
	}
}

// BackgroundColor parses Render.Background, given as #RRGGBB or
// #RRGGBBAA.
func (c *Config) BackgroundColor() (geometry.Color, error) {
	hex := strings.TrimPrefix(c.Render.Background, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("background %q: %w", c.Render.Background, err)
	}
	switch len(hex) {
	case 6:
		return geometry.Color(v<<8 | 0xff), nil
	case 8:
		return geometry.Color(v), nil
	}
	return 0, fmt.Errorf("background %q: want #RRGGBB or #RRGGBBAA", c.Render.Background)
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/brickview/internal/assets"
	"github.com/Faultbox/brickview/pkg/ldraw"
)

// OpenLibrary opens the configured parts library with its extra search
// folders.
func (c *Config) OpenLibrary() (*assets.Library, error) {
	lib, err := assets.NewLibrary(c.Library.Path)
	if err != nil {
		return nil, err
	}
	for _, dir := range c.Library.SearchDirs {
		if err := lib.AddSearchDir(dir); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// LoadPalette reads the configured LDConfig.ldr. The built-in palette is
// returned when the file does not exist.
func (c *Config) LoadPalette() (*ldraw.Palette, error) {
	path := c.PalettePath()
	if path == "" {
		return ldraw.DefaultPalette(), nil
	}
	p, err := ldraw.LoadPalette(path)
	if errors.Is(err, os.ErrNotExist) {
		return ldraw.DefaultPalette(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return p, nil
}

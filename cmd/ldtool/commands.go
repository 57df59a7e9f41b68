package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Faultbox/brickview/internal/assets"
	"github.com/Faultbox/brickview/internal/config"
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/loader"
	"github.com/Faultbox/brickview/internal/engine/model"
	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/internal/snapshot"
)

// errDiffer is returned by diff when the snapshots are not equal.
var errDiffer = errors.New("snapshots differ")

// env holds what the model commands share.
type env struct {
	cfg  *config.Config
	lib  *assets.Library
	opts loader.Options
}

func newEnv(configPath, ldrawDir string, debug bool) (*env, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	if ldrawDir != "" {
		cfg.Library.Path = ldrawDir
	}
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.InitWithOptions(logger.Options{Level: level, Format: cfg.Logging.Format, Console: true}); err != nil {
		return nil, err
	}

	lib, err := cfg.OpenLibrary()
	if errors.Is(err, os.ErrNotExist) {
		cfg.Library.Path = ""
		lib, err = cfg.OpenLibrary()
	}
	if err != nil {
		return nil, err
	}
	opts := cfg.LoaderOptions()
	if opts.Palette, err = cfg.LoadPalette(); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, lib: lib, opts: opts}, nil
}

func (e *env) close() {
	logger.Sync()
}

func (e *env) load(path string, flatten bool) (*model.MainModel, []string, error) {
	opts := e.opts
	opts.FlattenModel = flatten
	l := loader.New(e.lib, opts)
	main, err := l.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return main, l.Missing(), nil
}

func (e *env) statsCommand(out io.Writer, path string, flatten bool) error {
	main, missing, err := e.load(path, flatten)
	if err != nil {
		return err
	}
	st := main.Stats()
	b := main.Bounds()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", main.Name())
	fmt.Fprintf(w, "models\t%d\n", st.Models)
	fmt.Fprintf(w, "placements\t%d\n", st.Placements)
	for _, k := range geometry.Kinds {
		if n := st.Shapes[k]; n > 0 {
			fmt.Fprintf(w, "%s\t%d\n", k, n)
		}
	}
	fmt.Fprintf(w, "transparent triangles\t%d\n", main.Transparent().Len())
	for i, name := range storeNames {
		fmt.Fprintf(w, "%s vertices\t%d\n", name, main.Stores()[i].Len())
	}
	if b.OK {
		fmt.Fprintf(w, "bounds\t(%g, %g, %g) - (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
	for _, m := range missing {
		fmt.Fprintf(w, "missing\t%s\n", m)
	}
	return w.Flush()
}

var storeNames = []string{"plain", "colored", "stud", "colored stud"}

func (e *env) snapshotCommand(out io.Writer, path, output string) error {
	main, _, err := e.load(path, false)
	if err != nil {
		return err
	}
	snap := snapshot.Take(main)
	if output == "" {
		return snap.Write(out)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := snap.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readSnapshot(path string) (*snapshot.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := snapshot.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

func verifyCommand(out io.Writer, path string) error {
	snap, err := readSnapshot(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: ok, %d groups, digest %016x\n", snap.Model, len(snap.Groups), snap.Digest)
	return nil
}

func diffCommand(out io.Writer, a, b string) error {
	sa, err := readSnapshot(a)
	if err != nil {
		return err
	}
	sb, err := readSnapshot(b)
	if err != nil {
		return err
	}
	changed := snapshot.Diff(sa, sb)
	for _, name := range changed {
		fmt.Fprintln(out, name)
	}
	if len(changed) > 0 {
		return fmt.Errorf("%w: %d groups", errDiffer, len(changed))
	}
	return nil
}

func (e *env) digestCommand(out io.Writer, path string) error {
	main, _, err := e.load(path, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%016x\n", snapshot.Take(main).Digest)
	return nil
}

func (e *env) paletteCommand(out io.Writer) error {
	p := e.opts.Palette
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, code := range p.Codes() {
		c, _ := p.Lookup(code)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.Code, c.Name, c.Value, c.Edge)
	}
	return w.Flush()
}

func configCommand(out io.Writer, asTOML bool) error {
	data, err := config.Default().Marshal(asTOML)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/assets"
	"github.com/Faultbox/brickview/internal/config"
	"github.com/Faultbox/brickview/internal/engine/camera"
	"github.com/Faultbox/brickview/internal/engine/debug"
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/input"
	"github.com/Faultbox/brickview/internal/engine/loader"
	"github.com/Faultbox/brickview/internal/engine/model"
	"github.com/Faultbox/brickview/internal/engine/picking"
	"github.com/Faultbox/brickview/internal/engine/renderer"
	"github.com/Faultbox/brickview/internal/engine/window"
	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/internal/watch"
)

const reloadDebounce = 200 * time.Millisecond

var (
	boundsColor    = geometry.RGBA(0x20, 0xa0, 0x20, 0xff)
	selectionColor = geometry.RGBA(0xff, 0x80, 0x00, 0xff)
)

// Viewer shows one model file.
type Viewer struct {
	cfg     *config.Config
	path    string
	lib     *assets.Library
	loader  *loader.Loader
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.ScreenshotCapture
	watcher  *watch.Watcher
	// opened receives files picked in the open dialog.
	opened chan string

	main       *model.MainModel
	bounds     geometry.Bounds
	showBounds bool
	selected   *picking.Hit
}

// New opens the window and loads the model at path.
func New(cfg *config.Config, lib *assets.Library, opts loader.Options, path string) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		path:   path,
		lib:    lib,
		loader: loader.New(lib, opts),
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		shots:  debug.NewScreenshotCapture(cfg.Screenshot.Dir, "brickview"),
		opened: make(chan string, 1),
	}
	v.camera.FieldOfView = cfg.Render.FieldOfView
	if err := v.shots.SetFormat(cfg.Screenshot.Format); err != nil {
		logger.Warn("using png screenshots", zap.Error(err))
	}

	background, err := cfg.BackgroundColor()
	if err != nil {
		logger.Warn("invalid background, using white", zap.Error(err))
		background = geometry.RGBA(0xff, 0xff, 0xff, 0xff)
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      "brickview - " + filepath.Base(path),
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Background: background,
		LineWidth:  1,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := v.load(); err != nil {
		v.Close()
		return nil, err
	}
	v.camera.Reset(v.bounds)

	v.watcher, err = watch.New(reloadDebounce)
	if err == nil {
		err = v.watcher.Add(path)
	}
	if err != nil {
		logger.Warn("model will not reload on change", zap.Error(err))
	}

	logger.Info("viewer initialized", zap.String("model", path))
	return v, nil
}

// load (re)builds the model tree from disk.
func (v *Viewer) load() error {
	main, err := v.loader.LoadFile(v.path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", v.path, err)
	}
	if missing := v.loader.Missing(); len(missing) > 0 {
		logger.Warn("unresolved references", zap.Strings("files", missing))
	}
	v.main = main
	v.bounds = main.Bounds()
	v.selected = nil

	st := main.Stats()
	logger.Info("model loaded",
		zap.String("name", main.Name()),
		zap.Int("models", st.Models),
		zap.Int("placements", st.Placements),
		zap.Int("transparent", main.Transparent().Len()),
	)
	return nil
}

// reload reparses the model after a change on disk. The camera keeps its
// orientation.
func (v *Viewer) reload() {
	v.lib.Cache().Clear()
	if err := v.load(); err != nil {
		logger.Error("reload failed", zap.Error(err))
		return
	}
	v.renderer.Release()
	v.camera.FitToBounds(v.bounds)
}

// Run starts the main loop. It returns when the window is closed.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	var reloads <-chan string
	if v.watcher != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go v.watcher.Run(watchCtx)
		reloads = v.watcher.Reloads()
	}

	var frameTime time.Duration
	if v.cfg.Window.FPSLimit > 0 {
		frameTime = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		start := time.Now()

		// 1. Process input
		if v.input.Update() {
			break
		}
		for _, event := range v.input.Events() {
			v.handle(event)
		}

		select {
		case path := <-reloads:
			logger.Info("model changed, reloading", zap.String("path", path))
			v.reload()
		case path := <-v.opened:
			v.open(path)
		case <-ctx.Done():
			v.running = false
		default:
		}

		// 2. Render
		v.render()

		// 3. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := v.renderer.Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("batches", st.Batches),
				zap.Int("calls", st.Calls),
				zap.Int("indices", st.Indices),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameTime > 0 {
			if rest := frameTime - time.Since(start); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
	return nil
}

func (v *Viewer) handle(event input.Event) {
	opts := v.main.Options()
	switch event.Type {
	case input.EventWindowResize:
		v.renderer.Resize(event.Width, event.Height)
	case input.EventDrag:
		if event.Button == input.ButtonRight {
			v.camera.HandlePan(event.DX, event.DY)
		} else {
			v.camera.HandleDrag(event.DX, event.DY)
		}
	case input.EventZoom:
		v.camera.HandleZoom(event.Zoom)
	case input.EventClick:
		if event.Button == input.ButtonLeft {
			v.pick(event.X, event.Y)
		}
	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			v.running = false
		case sdl.SCANCODE_N:
			opts.DrawNormals = !opts.DrawNormals
		case sdl.SCANCODE_C:
			opts.ShowAllConditional = !opts.ShowAllConditional
		case sdl.SCANCODE_S:
			opts.StencilConditionals = !opts.StencilConditionals
		case sdl.SCANCODE_M:
			opts.MultiDraw = !opts.MultiDraw
		case sdl.SCANCODE_B:
			v.showBounds = !v.showBounds
		case sdl.SCANCODE_R:
			v.camera.Reset(v.bounds)
		case sdl.SCANCODE_P:
			v.screenshot()
		case sdl.SCANCODE_F5:
			v.reload()
		case sdl.SCANCODE_O:
			v.openFileDialog()
		}
	}
}

// pick selects the placement under the mouse, or clears the selection.
func (v *Viewer) pick(x, y float32) {
	width, height := v.renderer.Size()
	viewProj := v.camera.ProjectionMatrix(v.renderer.Aspect()).Mul(v.camera.ViewMatrix())
	inv, ok := viewProj.Inverse()
	if !ok {
		return
	}
	ray := picking.ScreenToRay(x, y, float32(width), float32(height), inv)
	hit, ok := picking.Pick(v.main.Model, ray)
	if !ok {
		v.selected = nil
		return
	}
	v.selected = &hit
	sub := v.main.SubModels()[hit.Index]
	color, _ := sub.Color()
	logger.Info("selected",
		zap.Int("index", hit.Index),
		zap.String("model", hit.Name),
		zap.Stringer("color", color),
		zap.Bool("mirrored", sub.IsMirrored()),
	)
}

// openFileDialog shows a native file dialog. The choice is handed to the
// main loop, which owns the GL context.
func (v *Viewer) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("LDraw models", "ldr", "mpd", "dat").
			Filter("All Files", "*").
			Title("Open model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case v.opened <- filename:
		default:
		}
	}()
}

// open replaces the shown model with the file at path.
func (v *Viewer) open(path string) {
	previous := v.path
	v.path = path
	v.lib.Cache().Clear()
	if err := v.load(); err != nil {
		logger.Error("open failed", zap.Error(err))
		v.path = previous
		return
	}
	v.renderer.Release()
	v.camera.Reset(v.bounds)
	v.window.SetTitle("brickview - " + filepath.Base(path))
	if v.watcher != nil {
		if err := v.watcher.Add(path); err != nil {
			logger.Warn("model will not reload on change", zap.Error(err))
		}
	}
}

func (v *Viewer) render() {
	view := v.camera.ViewMatrix()
	projection := v.camera.ProjectionMatrix(v.renderer.Aspect())

	v.renderer.Begin(projection)
	v.renderer.Render(v.main.DrawList(view, projection))
	if v.showBounds {
		v.renderer.DrawBox(view, v.bounds, boundsColor)
	}
	if v.selected != nil {
		v.renderer.DrawBox(view, v.selected.Bounds, selectionColor)
	}
	v.renderer.End()
}

func (v *Viewer) screenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases the window and GL resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			logger.Warn("closing watcher", zap.Error(err))
		}
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

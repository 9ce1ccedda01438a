package app

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"staticmapviewer/internal/config"
	"staticmapviewer/internal/controller"
	"staticmapviewer/internal/geocoder"
	"staticmapviewer/internal/layout"
	"staticmapviewer/internal/logger"
	"staticmapviewer/internal/mapimage"
	"staticmapviewer/internal/renderer"
	"staticmapviewer/internal/ui"
	"staticmapviewer/internal/view"
)

type App struct {
	window   *glfw.Window
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	renderer *renderer.Renderer
	ctrl     *controller.Controller
	log      *logger.Logger
	ctx      context.Context

	layout *layout.Layout
	title  string

	// shown is the frame last uploaded to the GPU
	shown *image.RGBA
	// failure is the first fatal error raised inside a callback
	failure error
}

func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	runtime.LockOSThread()

	l, err := layout.Resolve(cfg.Window.LayoutPath)
	if err != nil {
		return nil, err
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("GLFW init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.True)

	window, err := glfw.CreateWindow(l.Window.Width, l.Window.Height, l.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window creation failed: %w", err)
	}

	app := &App{
		window: window,
		log:    log,
		ctx:    context.Background(),
		layout: l,
		title:  l.Window.Title,
	}

	if err := app.initWebGPU(); err != nil {
		app.Cleanup()
		return nil, err
	}

	fbw, fbh := window.GetFramebufferSize()
	app.renderer, err = renderer.NewRenderer(app.adapter, app.device, app.queue, app.surface, uint32(fbw), uint32(fbh))
	if err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("renderer creation failed: %w", err)
	}

	client := &http.Client{Timeout: cfg.API.Timeout()}
	images, err := mapimage.NewFetcher(mapimage.Options{
		Endpoint:  cfg.API.StaticMapURL,
		UserAgent: cfg.API.UserAgent,
		CacheDir:  cfg.Cache.Dir,
		Client:    client,
		Log:       log.With("component", "mapimage"),
	})
	if err != nil {
		app.Cleanup()
		return nil, err
	}
	places := geocoder.NewClient(cfg.API.GeocoderURL, cfg.API.Key, cfg.API.UserAgent, client, log.With("component", "geocoder"))

	app.ctrl = controller.New(view.FromConfig(cfg.View), ui.NewForm(l), images, places, log.With("component", "controller"))

	app.setupCallbacks()

	if err := app.ctrl.Start(app.ctx); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initWebGPU() error {
	app.instance = wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: instanceBackends,
	})
	if app.instance == nil {
		return fmt.Errorf("failed to create WebGPU instance")
	}

	var err error
	app.surface, err = createSurface(app.instance, app.window)
	if err != nil {
		return fmt.Errorf("surface creation failed: %w", err)
	}

	// Request adapter - try with surface first, then without
	app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: app.surface,
		PowerPreference:   wgpu.PowerPreference_LowPower,
	})
	if err != nil {
		app.log.Warn("no adapter for surface, retrying without constraint", "error", err)
		app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: wgpu.PowerPreference_LowPower,
		})
		if err != nil {
			return fmt.Errorf("adapter request failed: %w", err)
		}
	}

	props := app.adapter.GetProperties()
	app.log.Debug("gpu adapter", "name", props.Name, "driver", props.DriverDescription)

	app.device, err = app.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "StaticMapViewerDevice",
	})
	if err != nil {
		return fmt.Errorf("device request failed: %w", err)
	}

	app.queue = app.device.GetQueue()
	return nil
}

func (app *App) setupCallbacks() {
	app.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if err := app.renderer.Resize(uint32(width), uint32(height)); err != nil {
			app.fail(err)
		}
	})

	app.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action != glfw.Press {
			return
		}
		x, y := w.GetCursorPos()
		ww, wh := w.GetSize()
		p := toLayout(x, y, ww, wh, app.layout.Window.Width, app.layout.Window.Height)
		app.fail(app.ctrl.HandleClick(app.ctx, p))
	})

	app.window.SetCharCallback(func(w *glfw.Window, char rune) {
		app.ctrl.TypeRune(char)
	})

	app.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyEnter, glfw.KeyKPEnter:
			app.fail(app.ctrl.Search(app.ctx))
		case glfw.KeyBackspace:
			app.ctrl.Backspace()
		default:
			if cmd, ok := commandFor(key); ok {
				app.fail(app.ctrl.Execute(app.ctx, cmd))
			}
		}
	})
}

// fail records a fatal error and asks the loop to stop
func (app *App) fail(err error) {
	if err == nil || app.failure != nil {
		return
	}
	app.failure = err
	app.window.SetShouldClose(true)
}

// present uploads the controller frame if it changed and draws it
func (app *App) present() error {
	if frame := app.ctrl.Frame(); frame != app.shown {
		if err := app.renderer.SetFrame(frame); err != nil {
			return err
		}
		app.shown = frame
		app.updateTitle()
	}
	return app.renderer.Render()
}

func (app *App) updateTitle() {
	s := app.ctrl.State()
	app.window.SetTitle(fmt.Sprintf("%s | %.5f, %.5f | span %g | %s", app.title, s.Lon, s.Lat, s.Delta, s.Layer))
}

// Run processes window events until the window is closed or a request fails
func (app *App) Run() error {
	for !app.window.ShouldClose() {
		if err := app.present(); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		glfw.WaitEvents()
	}
	return app.failure
}

func (app *App) Cleanup() {
	if app.renderer != nil {
		app.renderer.Release()
	}
	if app.queue != nil {
		app.queue.Release()
	}
	if app.device != nil {
		app.device.Release()
	}
	if app.adapter != nil {
		app.adapter.Release()
	}
	if app.surface != nil {
		app.surface.Release()
	}
	if app.instance != nil {
		app.instance.Release()
	}
	if app.window != nil {
		app.window.Destroy()
	}
	glfw.Terminate()
}

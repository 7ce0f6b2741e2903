package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"

	"github.com/gen2brain/beeep"
	systray "github.com/ra1phdd/systray-on-wails"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"dropdock/droptarget"
)

//go:embed build/appicon.png
var appIconPNG []byte

// DesktopApp is the Wails application binding struct and the drop host:
// it implements droptarget.Host and droptarget.FileOpener, so the drop
// adapter binds directly to it. Methods on this struct are exposed to
// the frontend via window.go.main.DesktopApp.
type DesktopApp struct {
	ctx     context.Context
	cfg     *AppConfig
	history *HistoryStore
	ui      *droptarget.Queue

	// drop adapter wiring
	adapter     *droptarget.Adapter
	acceptDrops bool
	dragEnter   func(droptarget.Payload) droptarget.Effect
	dragDrop    func(droptarget.Payload)
}

// NewDesktopApp creates a new DesktopApp instance. history may be nil;
// drops are then opened but not recorded.
func NewDesktopApp(cfg *AppConfig, history *HistoryStore) *DesktopApp {
	return &DesktopApp{
		cfg:     cfg,
		history: history,
		ui:      droptarget.NewQueue(),
	}
}

// ── droptarget.Host implementation ─────────────────────────────────────────

// AcceptDrops marks the window as willing to accept drag gestures. The
// platform glue consults this before registering native handlers.
func (a *DesktopApp) AcceptDrops(enabled bool) {
	a.acceptDrops = enabled
}

// OnDragEnter subscribes the drag-enter handler.
func (a *DesktopApp) OnDragEnter(fn func(droptarget.Payload) droptarget.Effect) {
	a.dragEnter = fn
}

// OnDragDrop subscribes the drag-drop handler.
func (a *DesktopApp) OnDragDrop(fn func(droptarget.Payload)) {
	a.dragDrop = fn
}

// Post queues a task onto the window's UI execution context.
func (a *DesktopApp) Post(task func()) {
	a.ui.Post(task)
}

// RaiseWindow brings the application window to the foreground. Best
// effort: the file browser the drag came from usually overlaps us.
func (a *DesktopApp) RaiseWindow() {
	if a.ctx == nil {
		return
	}
	wailsRuntime.Show(a.ctx)
	wailsRuntime.WindowUnminimise(a.ctx)
}

// ── droptarget.FileOpener implementation ───────────────────────────────────

// OpenFiles handles a dropped batch: records it, opens each path with
// the platform default application, notifies, and pushes the batch to
// the frontend. Runs on the UI queue, posted there by the drop adapter.
func (a *DesktopApp) OpenFiles(paths []string) {
	Log.Info("opening dropped files", "count", len(paths))

	batch := DropBatch{Paths: paths}
	if a.history != nil {
		recorded, err := a.history.RecordBatch(paths)
		if err != nil {
			Log.Error("recording drop batch failed", "error", err)
		} else {
			batch = recorded
		}
	}

	opened := 0
	for _, p := range paths {
		if err := openWithDefaultApp(p); err != nil {
			Log.Error("opening file failed", "path", p, "error", err)
			continue
		}
		opened++
	}

	if a.cfg.IsNotifyOnDrop() && opened > 0 {
		title := "DropDock"
		body := fmt.Sprintf("Opened %d file(s)", opened)
		if opened == 1 {
			body = "Opened " + filepath.Base(paths[0])
		}
		if err := beeep.Notify(title, body, ""); err != nil {
			Log.Error("notification failed", "error", err)
		}
	}

	a.emitFilesOpened(batch)
}

// openWithDefaultApp opens a file with its default application.
func openWithDefaultApp(filePath string) error {
	switch goruntime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", filePath).Start()
	case "darwin":
		return exec.Command("open", filePath).Start()
	case "linux":
		return exec.Command("xdg-open", filePath).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goruntime.GOOS)
	}
}

// ── Wails lifecycle ────────────────────────────────────────────────────────

// startup is called when the Wails app starts.
func (a *DesktopApp) startup(ctx context.Context) {
	Log.Debug("Wails OnStartup")
	a.ctx = ctx

	beeep.AppName = "DropDock"

	a.adapter = droptarget.New(Log)
	if err := a.adapter.Bind(a); err != nil {
		// Programming error; nothing downstream works without the binding.
		Log.Error("binding drop target failed", "error", err)
		return
	}

	a.initSystray()
}

// onDomReady is called when the WebView DOM is fully loaded. Native drop
// registration needs the content window to exist, so it happens here.
func (a *DesktopApp) onDomReady(ctx context.Context) {
	Log.Debug("Wails OnDomReady")
	if a.acceptDrops {
		hookPlatformDrop(a)
	}
}

// shutdown is called when the Wails app is closing.
func (a *DesktopApp) shutdown(ctx context.Context) {
	// Save window size
	w, h := wailsRuntime.WindowGetSize(ctx)
	if w > 0 && h > 0 {
		a.cfg.WindowWidth = w
		a.cfg.WindowHeight = h
	}
	a.cfg.LogLevel = GetLogLevel()
	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("saving config failed", "error", err)
	}

	systray.Quit()

	// Run anything still queued (e.g. a drop that raced the close), then stop.
	a.ui.Close()

	if a.history != nil {
		a.history.Close()
	}
}

// showWindow brings the application window to the foreground.
func (a *DesktopApp) showWindow() {
	a.RaiseWindow()
}

// initSystray sets up the system tray icon and menu.
func (a *DesktopApp) initSystray() {
	systray.Register(func() {
		systray.SetIcon(trayIcon())
		systray.SetTooltip("DropDock v" + AppVersion)

		mShow := systray.AddMenuItem("Open window", "Open the DropDock window")
		mQuit := systray.AddMenuItem("Quit", "Quit DropDock")

		go func() {
			for {
				select {
				case <-mShow.ClickedCh:
					a.showWindow()
				case <-mQuit.ClickedCh:
					wailsRuntime.Quit(a.ctx)
					return
				}
			}
		}()
	}, nil)
}

// ── Frontend bindings ──────────────────────────────────────────────────────

// GetRecentDrops returns up to limit recent drop batches, newest first.
func (a *DesktopApp) GetRecentDrops(limit int) ([]DropBatch, error) {
	if a.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return a.history.Recent(limit)
}

// ClearHistory removes all recorded drops.
func (a *DesktopApp) ClearHistory() error {
	if a.history == nil {
		return nil
	}
	if err := a.history.Clear(); err != nil {
		return err
	}
	a.emitHistoryCleared()
	return nil
}

// SetNotifyOnDrop toggles the post-drop notification.
func (a *DesktopApp) SetNotifyOnDrop(on bool) {
	a.cfg.NotifyOnDrop = &on
}

// RevealInExplorer opens the system file explorer at the given file path.
func (a *DesktopApp) RevealInExplorer(filePath string) error {
	switch goruntime.GOOS {
	case "windows":
		return exec.Command("explorer", "/select,", filePath).Start()
	case "darwin":
		return exec.Command("open", "-R", filePath).Start()
	case "linux":
		return exec.Command("xdg-open", filepath.Dir(filePath)).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goruntime.GOOS)
	}
}

// OpenLogDir opens the log directory in the system file explorer.
func (a *DesktopApp) OpenLogDir() error {
	logDir := LogDir()
	os.MkdirAll(logDir, 0755)
	switch goruntime.GOOS {
	case "windows":
		return exec.Command("explorer", logDir).Start()
	case "darwin":
		return exec.Command("open", logDir).Start()
	case "linux":
		return exec.Command("xdg-open", logDir).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goruntime.GOOS)
	}
}

// GetAppInfo returns version info for the frontend about screen.
func (a *DesktopApp) GetAppInfo() map[string]interface{} {
	return map[string]interface{}{
		"version":  AppVersion,
		"logLevel": GetLogLevel(),
	}
}

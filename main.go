package main

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

// AppVersion is the application version shown in the tray tooltip and
// the about screen.
const AppVersion = "0.3.0"

func main() {
	logLevel := pflag.String("log-level", "", "log level: error, info or debug (overrides config)")
	recent := pflag.Int("recent", 0, "print the N most recent drop batches and exit")
	pflag.Parse()

	cfg := LoadConfig()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logFile, err := InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if *recent > 0 {
		if err := printRecentDrops(*recent); err != nil {
			fmt.Fprintf(os.Stderr, "failed to read history: %v\n", err)
			os.Exit(1)
		}
		return
	}

	stopWatch := WatchConfig()
	defer stopWatch()

	history, err := OpenHistory(cfg.HistoryDays)
	if err != nil {
		// Run without history rather than refusing to start.
		Log.Error("opening drop history failed", "error", err)
		history = nil
	}

	app := NewDesktopApp(cfg, history)

	err = wails.Run(&options.App{
		Title:  "DropDock",
		Width:  cfg.WindowWidth,
		Height: cfg.WindowHeight,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnDomReady: app.onDomReady,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop:     true,
			DisableWebViewDrop: true,
		},
	})
	if err != nil {
		Log.Error("wails run failed", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// printRecentDrops dumps recent history to stdout for the --recent flag.
func printRecentDrops(limit int) error {
	history, err := OpenHistory(0)
	if err != nil {
		return err
	}
	defer history.Close()

	batches, err := history.Recent(limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("no recorded drops")
		return nil
	}
	for _, b := range batches {
		fmt.Printf("%s  %s\n", b.DroppedAt.Local().Format("2006-01-02 15:04:05"), strings.Join(b.Paths, ", "))
	}
	return nil
}

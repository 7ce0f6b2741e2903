package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
)

// AppConfig holds all persistent user settings.
type AppConfig struct {
	LogLevel     string `json:"logLevel"`
	WindowWidth  int    `json:"windowWidth"`
	WindowHeight int    `json:"windowHeight"`
	HistoryDays  int    `json:"historyDays"`
	NotifyOnDrop *bool  `json:"notifyOnDrop"` // nil = true (default on)
}

// IsNotifyOnDrop returns whether a system notification is shown after a
// drop is handled (default true).
func (c *AppConfig) IsNotifyOnDrop() bool {
	return c.NotifyOnDrop == nil || *c.NotifyOnDrop
}

// DefaultConfig returns config with default values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		LogLevel:     "error",
		WindowWidth:  520,
		WindowHeight: 640,
		HistoryDays:  30,
	}
}

// ConfigDir returns the path to the config directory, creating it if needed.
func ConfigDir() string {
	dir := filepath.Join(xdg.ConfigHome, "dropdock")
	os.MkdirAll(dir, 0755)
	return dir
}

// configPath returns the config file path.
func configPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig reads config from the XDG config dir.
// Returns default config if the file doesn't exist or can't be parsed.
func LoadConfig() *AppConfig {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) *AppConfig {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		if Log != nil {
			Log.Error("config parse failed, using defaults", "path", path, "error", err)
		}
		return DefaultConfig()
	}

	// Ensure window size has valid defaults
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 520
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 640
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 30
	}

	return cfg
}

// SaveConfig writes the config to the XDG config dir.
func SaveConfig(cfg *AppConfig) error {
	return saveConfigFile(cfg, configPath())
}

func saveConfigFile(cfg *AppConfig, path string) error {
	os.MkdirAll(filepath.Dir(path), 0755)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WatchConfig watches the config file and applies the log level from it
// when it changes, so the level can be adjusted without a restart.
// Returns a stop function.
func WatchConfig() (stop func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		Log.Error("config watcher init failed", "error", err)
		return func() {}
	}

	// Watch the directory: editors replace the file on save, which would
	// drop a watch on the file itself.
	if err := watcher.Add(ConfigDir()); err != nil {
		Log.Error("config watcher add failed", "error", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != filepath.Base(configPath()) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg := LoadConfig()
				if cfg.LogLevel != GetLogLevel() {
					SetLogLevel(cfg.LogLevel)
					Log.Info("log level reloaded from config", "level", cfg.LogLevel)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				Log.Error("config watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }
}

package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// CaptureSettings is the hot-reloadable part of the capture pipeline:
// debounce windows (millis, zero keeps the default) and extra sensitive
// keywords appended to the built-in list.
type CaptureSettings struct {
	InputDebounceMillis  int      `yaml:"input_debounce_ms"`
	ScrollDebounceMillis int      `yaml:"scroll_debounce_ms"`
	HoverDebounceMillis  int      `yaml:"hover_debounce_ms"`
	SensitiveKeywords    []string `yaml:"sensitive_keywords"`
}

// LoadCaptureSettings reads the YAML settings file. A missing path yields
// zero-value settings, not an error.
func LoadCaptureSettings(path string) (CaptureSettings, error) {
	var s CaptureSettings
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read capture settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse capture settings: %w", err)
	}
	return s, nil
}

// WatchCaptureSettings watches the settings file and invokes onChange with
// the re-parsed settings after writes, debounced so editors that write in
// bursts trigger a single reload. Returns a stop function.
func WatchCaptureSettings(path string, onChange func(CaptureSettings)) (func(), error) {
	if path == "" {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		var debounce *time.Timer
		for {
			select {
			case <-done:
				if debounce != nil {
					debounce.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(500*time.Millisecond, func() {
						s, err := LoadCaptureSettings(path)
						if err != nil {
							log.Printf("capture settings reload failed: %v", err)
							return
						}
						log.Printf("capture settings reloaded from %s", path)
						onChange(s)
					})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("settings watcher error: %v", err)
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/folio/internal/segmentation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine.URL == "" {
		t.Error("expected default engine URL")
	}
	if cfg.Books.PDFDPI != 300 {
		t.Errorf("expected pdf_dpi 300, got %v", cfg.Books.PDFDPI)
	}
	if len(cfg.Books.ImageFilter) == 0 {
		t.Error("expected default image filter")
	}
	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("expected 127.0.0.1:8080, got %s", cfg.Server.Addr())
	}

	d, err := cfg.Segmentation.Defaults()
	if err != nil {
		t.Fatalf("default segmentation config invalid: %v", err)
	}
	if d.Knobs != segmentation.DefaultKnobs() {
		t.Errorf("expected default knobs, got %+v", d.Knobs)
	}
}

func TestSegmentationCfg_Defaults(t *testing.T) {
	t.Run("parses image seg type", func(t *testing.T) {
		d, err := SegmentationCfg{ImageSegType: "rotated_rect", CombineImages: true, TextDilationY: 9}.Defaults()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.ImageSegType != segmentation.ImageSegRotatedRect || !d.CombineImages || d.TextDilationY != 9 {
			t.Errorf("unexpected defaults %+v", d)
		}
	})

	t.Run("rejects unknown image seg type", func(t *testing.T) {
		if _, err := (SegmentationCfg{ImageSegType: "blob"}).Defaults(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
engine:
  url: "http://engine.test:9000"
  max_retries: 5
translation:
  strict: true
books:
  image_filter: [".png"]
`)
		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Engine.URL != "http://engine.test:9000" {
			t.Errorf("expected engine url from file, got %s", cfg.Engine.URL)
		}
		if cfg.Engine.MaxRetries != 5 {
			t.Errorf("expected 5 retries, got %d", cfg.Engine.MaxRetries)
		}
		if !cfg.Translation.Strict {
			t.Error("expected strict translation")
		}
		if len(cfg.Books.ImageFilter) != 1 {
			t.Errorf("expected file image filter, got %v", cfg.Books.ImageFilter)
		}
		// Unset keys keep their defaults
		if cfg.Engine.TimeoutSeconds != 120 {
			t.Errorf("expected default timeout, got %d", cfg.Engine.TimeoutSeconds)
		}
		if mgr.ConfigFile() != configFile {
			t.Errorf("expected config file %s, got %s", configFile, mgr.ConfigFile())
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("FOLIO_ENGINE_URL", "http://from-env:1")
		configFile := writeConfig(t, "engine:\n  url: http://from-file:1\n")

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if got := mgr.Get().Engine.URL; got != "http://from-env:1" {
			t.Errorf("expected env override, got %s", got)
		}
	})

	t.Run("rejects invalid segmentation config", func(t *testing.T) {
		configFile := writeConfig(t, "segmentation:\n  image_seg_type: HEXAGON\n")
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for invalid image_seg_type")
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Log.Level
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "translation:\n  strict: false\n")

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	if mgr.Get().Translation.Strict {
		t.Fatal("expected lenient translation initially")
	}

	var callbackCount atomic.Int32
	var lastStrict atomic.Bool

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastStrict.Store(cfg.Translation.Strict)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("translation:\n  strict: true\n"), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if !mgr.Get().Translation.Strict {
		t.Error("config not updated after file change")
	}
	if !lastStrict.Load() {
		t.Error("callback received stale config")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to load written default: %v", err)
	}
	cfg := mgr.Get()
	want := DefaultConfig()
	if cfg.Engine.Docker.ContainerName != want.Engine.Docker.ContainerName {
		t.Errorf("expected container name %s, got %s", want.Engine.Docker.ContainerName, cfg.Engine.Docker.ContainerName)
	}
	if cfg.Segmentation.ImageSegType != want.Segmentation.ImageSegType {
		t.Errorf("expected image seg type %s, got %s", want.Segmentation.ImageSegType, cfg.Segmentation.ImageSegType)
	}
}

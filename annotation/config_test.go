package annotation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("meta:\n  description: test\n"))
		if err != nil {
			t.Fatalf("ParseConfig() error = %v", err)
		}
		if cfg.Database != DefaultDatabase || cfg.Addr != DefaultAddr || cfg.Tasks.ImagesPerTask != DefaultImagesPerTask {
			t.Errorf("defaults not applied: %+v", cfg)
		}
		if cfg.Meta.Description != "test" {
			t.Errorf("description = %q", cfg.Meta.Description)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("database: x.db\naddr: \":9000\"\ntasks:\n  images_per_task: 5\n"))
		if err != nil {
			t.Fatalf("ParseConfig() error = %v", err)
		}
		if cfg.Database != "x.db" || cfg.Addr != ":9000" || cfg.Tasks.ImagesPerTask != 5 {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("rejects negative task size", func(t *testing.T) {
		if _, err := ParseConfig([]byte("tasks:\n  images_per_task: -1\n")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("sample config parses", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(SampleConfig))
		if err != nil {
			t.Fatalf("ParseConfig() error = %v", err)
		}
		if cfg.Addr != ":8003" {
			t.Errorf("addr = %q", cfg.Addr)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("falls back to the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("addr: \":1234\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigEnv, path)
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Addr != ":1234" {
			t.Errorf("addr = %q", cfg.Addr)
		}
	})

	t.Run("defaults without any file", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Database != DefaultDatabase {
			t.Errorf("database = %q", cfg.Database)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}

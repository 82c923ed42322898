package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"cflagd/internal/flags"
)

func TestParseConfigurationMissingFile(t *testing.T) {
	config, err := ParseConfiguration(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatal(err)
	}

	if config.SocketPath != "/run/cflagd.sock" || config.LogFileName != "stderr" || config.LogLevel != 1 {
		t.Errorf("unexpected defaults: %+v", config)
	}
	if !config.ProjectOverrides {
		t.Error("project overrides are expected to default to on")
	}
}

func TestParseConfigurationPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "daemon.toml")
	contents := `
SocketPath = "/tmp/test-cflagd.sock"
Std = "gnu99"
LogLevel = 2
`
	if err := os.WriteFile(configPath, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := ParseConfiguration(configPath)
	if err != nil {
		t.Fatal(err)
	}

	if config.SocketPath != "/tmp/test-cflagd.sock" || config.Std != "gnu99" || config.LogLevel != 2 {
		t.Errorf("unexpected values: %+v", config)
	}
	// untouched fields keep their defaults
	if config.LogFileName != "stderr" || config.IdleTimeoutSeconds != 0 {
		t.Errorf("defaults lost: %+v", config)
	}
}

func TestParseConfigurationMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "daemon.toml")
	if err := os.WriteFile(configPath, []byte("SocketPath = [oops"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseConfiguration(configPath); err == nil {
		t.Error("expected an error for malformed toml")
	}
}

func TestMakeProviderFromConfiguration(t *testing.T) {
	provider, err := makeProvider(&Configuration{HomeDir: "/home/alice", Std: "gnu99"})
	if err != nil {
		t.Fatal(err)
	}

	served := provider.SettingsForFile("foo.c", flags.Options{}).Flags
	if !slices.Contains(served, "-std=gnu99") || !slices.Contains(served, "-I/home/alice/include") {
		t.Errorf("unexpected flags: %v", served)
	}
}

func TestMakeProviderWithoutHomeAnywhere(t *testing.T) {
	t.Setenv("HOME", "") // registers restore of the original value
	_ = os.Unsetenv("HOME")

	if _, err := makeProvider(&Configuration{}); !errors.Is(err, flags.ErrHomeNotSet) {
		t.Errorf("expected ErrHomeNotSet, got %v", err)
	}
}

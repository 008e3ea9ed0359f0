package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/atelier/internal/config"
)

func TestLoadConfig_MissingDefaultPath(t *testing.T) {
	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg, err := loadConfig("atelier.yaml")
	if err != nil {
		t.Fatalf("missing default config should fall back: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite default", cfg.Storage.Driver)
	}
}

func TestLoadConfig_MissingExplicitPath(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("explicitly named missing config should error")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
}

func TestCreateBridge_Disabled(t *testing.T) {
	for _, provider := range []string{"", "none"} {
		cfg := config.Default()
		cfg.AI.Provider = provider
		bridge, err := createBridge(context.Background(), cfg)
		if err != nil {
			t.Errorf("provider %q: %v", provider, err)
		}
		if bridge != nil {
			t.Errorf("provider %q: expected nil bridge", provider)
		}
	}
}

func TestCreateBridge_GeminiMissingKey(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = "gemini"
	cfg.AI.APIKeyEnv = "ATELIER_TEST_NO_SUCH_KEY"

	_, err := createBridge(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error when key env is unset")
	}
	if !strings.Contains(err.Error(), "ATELIER_TEST_NO_SUCH_KEY") {
		t.Errorf("error = %q, want to name the env var", err)
	}
}

func TestCreateBridge_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = "skynet"

	_, err := createBridge(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "skynet") {
		t.Fatalf("err = %v", err)
	}
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()
	flag := cmd.Flags().Lookup("config")
	if flag == nil {
		t.Fatal("serve should have a --config flag")
	}
	if flag.DefValue != "atelier.yaml" {
		t.Errorf("default config path = %q, want atelier.yaml", flag.DefValue)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, expected 5000", cfg.Port)
	}
	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.TensorLayout != "nhwc" {
		t.Errorf("TensorLayout = %q, expected nhwc", cfg.TensorLayout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("TENSOR_LAYOUT", "NCHW")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr() != "127.0.0.1:8081" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.SecretKey != "s3cret" {
		t.Errorf("SecretKey = %q", cfg.SecretKey)
	}
	if cfg.TensorLayout != "nchw" {
		t.Errorf("TensorLayout = %q", cfg.TensorLayout)
	}
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "not-a-port")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, expected default", cfg.Port)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	data := []byte("port: 7000\nmodel_name: Test Model\nupload_dir: /tmp/up\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("UPLOAD_DIR", "override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, expected 7000 from file", cfg.Port)
	}
	if cfg.ModelName != "Test Model" {
		t.Errorf("ModelName = %q", cfg.ModelName)
	}
	if cfg.UploadDir != "override" {
		t.Errorf("UploadDir = %q, expected env override", cfg.UploadDir)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "does-not-exist.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"upload cap", func(c *Config) { c.MaxUploadBytes = -1 }},
		{"secret", func(c *Config) { c.SecretKey = "" }},
		{"layout", func(c *Config) { c.TensorLayout = "hwc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() accepted invalid %s", tt.name)
			}
		})
	}
}

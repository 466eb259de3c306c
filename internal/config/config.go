// Package config loads server settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	SecretKey      string `yaml:"secret_key"`
	Debug          bool   `yaml:"debug"`

	ModelName       string `yaml:"model_name"`
	ModelPath       string `yaml:"model_path"`
	ClassNamesPath  string `yaml:"class_names_path"`
	SummaryPath     string `yaml:"summary_path"`
	OnnxRuntimeLib  string `yaml:"onnxruntime_lib"`
	ModelInputName  string `yaml:"model_input_name"`
	ModelOutputName string `yaml:"model_output_name"`
	TensorLayout    string `yaml:"tensor_layout"`

	DiagnosticDir string `yaml:"diagnostic_dir"`
	UploadDir     string `yaml:"upload_dir"`
	StaticDir     string `yaml:"static_dir"`
}

func Default() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            5000,
		MaxUploadBytes:  16 << 20,
		SecretKey:       "gummy-classifier-dev-secret",
		ModelName:       "Gummy Classifier",
		ModelPath:       filepath.Join("models", "model.onnx"),
		ClassNamesPath:  filepath.Join("models", "class_names.txt"),
		SummaryPath:     filepath.Join("output", "model_summary.txt"),
		ModelInputName:  "input",
		ModelOutputName: "output",
		TensorLayout:    "nhwc",
		DiagnosticDir:   "temp_uploads",
		UploadDir:       "uploads",
		StaticDir:       "static",
	}
}

// Load builds the configuration. A missing .env file is not an error; a
// CONFIG_FILE that cannot be read or parsed is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnvAsInt("PORT", c.Port)
	c.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.SecretKey = getEnv("SECRET_KEY", c.SecretKey)
	c.Debug = getEnvAsBool("DEBUG", c.Debug)

	c.ModelName = getEnv("MODEL_NAME", c.ModelName)
	c.ModelPath = getEnv("MODEL_PATH", c.ModelPath)
	c.ClassNamesPath = getEnv("CLASS_NAMES_PATH", c.ClassNamesPath)
	c.SummaryPath = getEnv("SUMMARY_PATH", c.SummaryPath)
	c.OnnxRuntimeLib = getEnv("ONNXRUNTIME_LIB", c.OnnxRuntimeLib)
	c.ModelInputName = getEnv("MODEL_INPUT_NAME", c.ModelInputName)
	c.ModelOutputName = getEnv("MODEL_OUTPUT_NAME", c.ModelOutputName)
	c.TensorLayout = strings.ToLower(getEnv("TENSOR_LAYOUT", c.TensorLayout))

	c.DiagnosticDir = getEnv("DIAGNOSTIC_DIR", c.DiagnosticDir)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid upload size cap %d", c.MaxUploadBytes)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key cannot be empty")
	}
	switch c.TensorLayout {
	case "nhwc", "nchw":
	default:
		return fmt.Errorf("unknown tensor layout %q", c.TensorLayout)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

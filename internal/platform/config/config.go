package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends for the program registry and member tables.
const (
	StorageCSV    = "csv"
	StorageSQLite = "sqlite"
)

// Keys understood by Load. Each is also read from PROGRAMTRACK_<KEY>.
const (
	KeyAddr            = "addr"
	KeyDataDir         = "data_dir"
	KeyStorage         = "storage"
	KeySQLitePath      = "sqlite_path"
	KeyFontPath        = "font_path"
	KeyPDFCompression  = "pdf_compression"
	KeyMaxUploadBytes  = "max_upload_bytes"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyShutdownTimeout = "shutdown_timeout"
)

const envPrefix = "PROGRAMTRACK"

// Server captures process level configuration. It is built once in main and
// passed down explicitly; no package reads the environment on its own.
type Server struct {
	Addr            string
	DataDir         string
	Storage         string
	SQLitePath      string
	FontPath        string
	PDFCompression  bool
	MaxUploadBytes  int64
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, ":5000")
	v.SetDefault(KeyDataDir, "programs")
	v.SetDefault(KeyStorage, StorageCSV)
	v.SetDefault(KeySQLitePath, "")
	v.SetDefault(KeyFontPath, "")
	v.SetDefault(KeyPDFCompression, true)
	v.SetDefault(KeyMaxUploadBytes, int64(10<<20))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads a .env file into the process environment when present.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ReadFile merges a YAML/TOML/JSON config file into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load builds a Server config from v.
func Load(v *viper.Viper) (Server, error) {
	cfg := Server{
		Addr:            v.GetString(KeyAddr),
		DataDir:         v.GetString(KeyDataDir),
		Storage:         strings.ToLower(strings.TrimSpace(v.GetString(KeyStorage))),
		SQLitePath:      v.GetString(KeySQLitePath),
		FontPath:        v.GetString(KeyFontPath),
		PDFCompression:  v.GetBool(KeyPDFCompression),
		MaxUploadBytes:  v.GetInt64(KeyMaxUploadBytes),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}

	if cfg.DataDir == "" {
		return Server{}, errors.New("data_dir must not be empty")
	}
	switch cfg.Storage {
	case StorageCSV:
	case StorageSQLite:
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = filepath.Join(cfg.DataDir, "programtrack.db")
		}
	default:
		return Server{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}

// FromEnv builds a Server config from defaults and environment variables so
// callers without flags stay lean.
func FromEnv() (Server, error) {
	return Load(NewViper())
}

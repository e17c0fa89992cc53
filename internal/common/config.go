package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Catalog  CatalogConfig
	Rules    RulesConfig
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	Log      LogConfig
}

// CatalogConfig points at the reference part-number catalog.
type CatalogConfig struct {
	Path string
}

// RulesConfig optionally overrides the built-in quality clause rule table.
type RulesConfig struct {
	Path string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// DatabaseConfig holds record store configuration
type DatabaseConfig struct {
	Driver          string // "sqlite" | "postgres" | "" (disabled)
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds the external text acquisition tools
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MinTextLength int

	// CommandTimeout bounds each external tool call.
	CommandTimeout time.Duration
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string
	Format string
}

// NewViper returns a viper instance with defaults and env bindings applied.
// Callers may bind CLI flags on top of it before calling LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("catalog.path", "PartNumbers.xlsx")
	v.SetDefault("rules.path", "")
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("ocr.pdftotext", "pdftotext")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.min_text_length", 50)
	v.SetDefault("ocr.command_timeout", 2*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CATALOG_PATH, LOG_LEVEL, OCR_DPI, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names kept from the earlier env-only loader
	_ = v.BindEnv("server.grpc_addr", "GRPC_ADDR")
	_ = v.BindEnv("database.driver", "DB_DRIVER")
	_ = v.BindEnv("database.url", "DB_URL")
	_ = v.BindEnv("database.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("database.min_conns", "DB_MIN_CONNS")
	_ = v.BindEnv("database.max_conn_lifetime", "DB_MAX_CONN_LIFETIME")
	_ = v.BindEnv("database.dial_timeout", "DB_DIAL_TIMEOUT")
	_ = v.BindEnv("ocr.tessdata_dir", "TESSDATA_PREFIX")
	return v
}

// LoadConfig reads an optional config file into v and decodes the result.
// A missing file at an explicit path is an error; an empty path skips the file.
func LoadConfig(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read config %s", file), err)
		}
	}

	return &Config{
		Catalog: CatalogConfig{Path: v.GetString("catalog.path")},
		Rules:   RulesConfig{Path: v.GetString("rules.path")},
		Server:  ServerConfig{GRPCAddr: v.GetString("server.grpc_addr")},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			DSN:             v.GetString("database.url"),
			MaxConns:        v.GetInt32("database.max_conns"),
			MinConns:        v.GetInt32("database.min_conns"),
			MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
			DialTimeout:     v.GetDuration("database.dial_timeout"),
		},
		OCR: OCRConfig{
			Pdftotext:      v.GetString("ocr.pdftotext"),
			Pdftoppm:       v.GetString("ocr.pdftoppm"),
			Tesseract:      v.GetString("ocr.tesseract"),
			TesseractLang:  v.GetString("ocr.lang"),
			TessdataDir:    v.GetString("ocr.tessdata_dir"),
			DPI:            v.GetInt("ocr.dpi"),
			MinTextLength:  v.GetInt("ocr.min_text_length"),
			CommandTimeout: v.GetDuration("ocr.command_timeout"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("log.level", c.Log.Level, OneOf("debug", "info", "warn", "error"))
	v.Field("log.format", c.Log.Format, OneOf("text", "json"))
	v.Field("database.driver", c.Database.Driver, OneOf("", "sqlite", "postgres"))
	if c.Database.Driver != "" {
		v.Field("database.url", c.Database.DSN, Required)
	}
	v.Field("ocr.dpi", c.OCR.DPI, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidConfig)
	}
	return nil
}

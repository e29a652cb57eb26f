// Package config loads server settings from an optional YAML file, a .env
// file and ZALOGA_* environment variables.
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

// EnvPrefix is the prefix of environment variables overriding config keys.
const EnvPrefix = "ZALOGA"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Limits LimitsConfig `mapstructure:"limits"`
	Report ReportConfig `mapstructure:"report"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DataConfig struct {
	Dir           string `mapstructure:"dir"`
	InventoryFile string `mapstructure:"inventory_file"`
	LedgerFile    string `mapstructure:"ledger_file"`
	AccountsDB    string `mapstructure:"accounts_db"`
	UploadsDir    string `mapstructure:"uploads_dir"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens. When empty, a secret stored in the
	// accounts database is used.
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	CodeTTL   time.Duration `mapstructure:"code_ttl"`
}

type LimitsConfig struct {
	UploadBytes int64   `mapstructure:"upload_bytes"`
	LoginRPS    float64 `mapstructure:"login_rps"`
	LoginBurst  int     `mapstructure:"login_burst"`
}

type ReportConfig struct {
	RangeDays int `mapstructure:"range_days"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

// InventoryPath returns the path of the inventory JSON file.
func (d DataConfig) InventoryPath() string { return d.join(d.InventoryFile) }

// LedgerPath returns the path of the movement ledger JSON file.
func (d DataConfig) LedgerPath() string { return d.join(d.LedgerFile) }

// AccountsPath returns the path of the SQLite accounts database.
func (d DataConfig) AccountsPath() string { return d.join(d.AccountsDB) }

// UploadsPath returns the directory holding item photos.
func (d DataConfig) UploadsPath() string { return d.join(d.UploadsDir) }

func (d DataConfig) join(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.inventory_file", "inventario.json")
	v.SetDefault("data.ledger_file", "historial.json")
	v.SetDefault("data.accounts_db", "usuarios.sqlite3")
	v.SetDefault("data.uploads_dir", "uploads")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.code_ttl", "15m")
	v.SetDefault("limits.upload_bytes", 5<<20)
	v.SetDefault("limits.login_rps", 1.0)
	v.SetDefault("limits.login_burst", 5)
	v.SetDefault("report.range_days", 32)
	v.SetDefault("log.file", "")
}

// Load reads the configuration. An empty path skips the config file; a
// missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("server.addr must not be empty")
	case c.Data.Dir == "":
		return errors.New("data.dir must not be empty")
	case c.Limits.UploadBytes <= 0:
		return errors.New("limits.upload_bytes must be positive")
	case c.Limits.LoginRPS <= 0 || c.Limits.LoginBurst <= 0:
		return errors.New("limits.login_rps and limits.login_burst must be positive")
	case c.Report.RangeDays <= 0:
		return errors.New("report.range_days must be positive")
	}
	return nil
}

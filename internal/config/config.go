package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/staffplan/backend/internal/cache"
	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/models"
	"gopkg.in/yaml.v3"
)

var ErrAPIURL = errors.New("environment variable API_URL must be set to a valid URL")

type DBConfig struct {
	// Path of the SQLite database. Used when no host is set.
	Path string `yaml:"path"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Postgres reports if a PostgreSQL server is configured.
func (c DBConfig) Postgres() bool {
	return c.Host != ""
}

// DSN returns the DSN for models.ConnectPostgres.
func (c DBConfig) DSN() string {
	port := ""
	if c.Port != 0 {
		port = strconv.Itoa(c.Port)
	}

	return models.PostgresDSN(c.Host, port, c.User, c.Password, c.Name)
}

type Config struct {
	APIURL    string            `yaml:"api_url"`
	MergeMode merge.Mode        `yaml:"merge_mode"`
	DB        DBConfig          `yaml:"db"`
	Redis     cache.RedisConfig `yaml:"redis"`

	// Parsed from APIURL by Load
	URL *url.URL `yaml:"-"`
}

func defaults() Config {
	return Config{
		MergeMode: merge.ModeNormal,
		DB: DBConfig{
			Path: "data/gorm.db",
			Name: "staffplan",
		},
	}
}

// Load reads the configuration.
//
// Values are taken from the YAML file named by CONFIG_FILE, then from the
// environment. envFiles are loaded into the environment first if they
// exist, they never override variables that are already set.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("could not load %s: %w", f, err)
		}
	}

	cfg := defaults()

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := overrideFromEnv(&cfg); err != nil {
		return Config{}, err
	}

	mode, err := merge.ParseMode(string(cfg.MergeMode))
	if err != nil {
		return Config{}, err
	}
	cfg.MergeMode = mode

	u, err := url.Parse(cfg.APIURL)
	if cfg.APIURL == "" || err != nil {
		return Config{}, ErrAPIURL
	}
	cfg.URL = u

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	return nil
}

func overrideFromEnv(cfg *Config) error {
	if v := os.Getenv("API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("MERGE_MODE"); v != "" {
		cfg.MergeMode = merge.Mode(v)
	}

	// Database
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT must be a number: %w", err)
		}
		cfg.DB.Port = p
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DB.Name = v
	}

	// Redis
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB must be a number: %w", err)
		}
		cfg.Redis.DB = db
	}

	return nil
}

// Mirror returns the cache mirror for the configuration. Without a
// Redis address, data is mirrored in memory.
func (c Config) Mirror() cache.Mirror {
	if c.Redis.Addr == "" {
		return cache.NewMemory()
	}

	return cache.NewRedis(c.Redis)
}

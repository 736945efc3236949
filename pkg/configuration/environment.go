package configuration

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c, err := New(".env", ".env.local")
	if err != nil {
		panic(err)
	}
	return c
})

// Use returns the process-wide configuration, loading it on first call.
func Use() *Configuration {
	return singleton()
}

// LoadEnv loads the given dotenv files, skipping ones that do not exist.
// Returns how many files were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"vicedu"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type Configuration struct {
	Database DatabaseOptions

	Env             string `env:"GO_APP_ENV" envDefault:"development"`
	Address         string `env:"ADDRESS" envDefault:"localhost:3200"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	AuthUserHeader  string `env:"AUTH_USER_HEADER" envDefault:"X-Auth-User-ID"`
	MigrateOnStart  bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	PrometheusPath  string `env:"PROMETHEUS_PATH" envDefault:"/debug/prometheus"`

	logger *logrus.Logger
}

// New builds a configuration from the environment, optionally preloading
// dotenv files first.
func New(envFiles ...string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, err
	}
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.Database.Opts = c.Database.ConnectionString()
	return c, nil
}

func (c *Configuration) IsProduction() bool {
	return strings.EqualFold(c.Env, Production)
}

// Logger returns the configured process logger, building it on first use.
func (c *Configuration) Logger() *logrus.Logger {
	if c.logger != nil {
		return c.logger
	}
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	c.logger = logger
	return logger
}

// Unload flushes anything the configuration holds open. Called from panic
// handlers before exit.
func (c *Configuration) Unload() {
	if c.logger != nil {
		if w, ok := c.logger.Out.(interface{ Sync() error }); ok {
			_ = w.Sync()
		}
	}
}

package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"cookbook/internal/storage"
)

// DriverMemory keeps everything in process, optionally snapshotted to a JSON file.
const DriverMemory = "memory"

const envPrefix = "COOKBOOK_"

// Config is read from COOKBOOK_* variables first; command-line flags override it.
type Config struct {
	Domain          string        `env:"DOMAIN"`
	Port            int           `env:"PORT" envDefault:"8765"`
	DBDriver        string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN           string        `env:"DB_DSN"`
	Seed            bool          `env:"SEED" envDefault:"true"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	MaxImageBytes   int64         `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	QueueTimeout    time.Duration `env:"QUEUE_TIMEOUT" envDefault:"2s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	OTLPEndpoint    string        `env:"OTLP_ENDPOINT"`
}

// LoadConfig parses the given environment. A bare PORT, as set by most PaaS
// runtimes, is honoured when COOKBOOK_PORT is absent.
func LoadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: environ,
		Prefix:      envPrefix,
	}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, set := environ[envPrefix+"PORT"]; !set {
		if raw, ok := environ["PORT"]; ok && raw != "" {
			port, err := strconv.Atoi(raw)
			if err != nil {
				return Config{}, fmt.Errorf("parse env: PORT: %w", err)
			}
			cfg.Port = port
		}
	}
	return cfg, nil
}

func loadConfigFromOS() (Config, error) {
	return LoadConfig(env.ToMap(os.Environ()))
}

// Validate rejects combinations that cannot start.
func (c Config) Validate() error {
	switch c.DBDriver {
	case storage.DriverSQLite, DriverMemory:
	case storage.DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("db-dsn is required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnsupportedDriver, c.DBDriver)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	return nil
}

// dsn fills in the per-driver default location.
func (c Config) dsn() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == storage.DriverSQLite {
		return "cookbook.db"
	}
	return ""
}

// address converts the port into a binding string.
func (c Config) address() string {
	return ":" + strconv.Itoa(c.Port)
}

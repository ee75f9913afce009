package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Redis      `yaml:"redis"`
	Redirect   `yaml:"redirect"`
	Session    `yaml:"session"`
	RateLimits `yaml:"rate_limits"`
	Analytics  `yaml:"analytics"`
	Domains    `yaml:"domains"`
}

// HTTPServer holds HTTP listener configuration.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
	// TrustedProxies lists IPs or CIDRs whose X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies  []string      `yaml:"trusted_proxies" env:"HTTP_TRUSTED_PROXIES" env-separator:","`
}

// Database holds relational store configuration.
type Database struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"` // postgres | sqlite
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"linkgate"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	SQLitePath      string `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"linkgate.db"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// Redis holds the shared counter store configuration. When disabled, counters stay in process.
type Redis struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Redirect holds resolution and classification settings.
type Redirect struct {
	BaseURL       string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	GateURL       string `yaml:"gate_url" env:"PASSWORD_GATE_URL" env-default:"/p"`
	CNAMETarget   string `yaml:"cname_target" env:"CNAME_TARGET" env-default:"cname.linkgate.io"`
	IPHashSalt    string `yaml:"ip_hash_salt" env:"IP_HASH_SALT"`
	UARegexesPath string `yaml:"ua_regexes_path" env:"UA_REGEXES_PATH"`
	CodeLength    int    `yaml:"code_length" env:"CODE_LENGTH" env-default:"7"`
}

// Session holds password-gate session signing settings.
type Session struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"1h"`
	Secure bool          `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"true"`
}

// RateLimits holds limit/window pairs for each limiter instance.
type RateLimits struct {
	CreateLimit    int           `yaml:"create_limit" env:"RL_CREATE_LIMIT" env-default:"100"`
	CreateWindow   time.Duration `yaml:"create_window" env:"RL_CREATE_WINDOW" env-default:"1m"`
	RedirectLimit  int           `yaml:"redirect_limit" env:"RL_REDIRECT_LIMIT" env-default:"1000"`
	RedirectWindow time.Duration `yaml:"redirect_window" env:"RL_REDIRECT_WINDOW" env-default:"1m"`
	VerifyLimit    int           `yaml:"verify_limit" env:"RL_VERIFY_LIMIT" env-default:"5"`
	VerifyWindow   time.Duration `yaml:"verify_window" env:"RL_VERIFY_WINDOW" env-default:"5m"`
	PasswordLimit  int           `yaml:"password_limit" env:"RL_PASSWORD_LIMIT" env-default:"5"`
	PasswordWindow time.Duration `yaml:"password_window" env:"RL_PASSWORD_WINDOW" env-default:"15m"`
}

// Analytics holds click recorder and aggregation settings.
type Analytics struct {
	WorkerCount  int           `yaml:"worker_count" env:"ANALYTICS_WORKERS" env-default:"4"`
	BufferSize   int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"10000"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"ANALYTICS_WRITE_TIMEOUT" env-default:"5s"`
	TopN         int           `yaml:"top_n" env:"ANALYTICS_TOP_N" env-default:"10"`
}

// Domains holds custom-domain policy.
type Domains struct {
	MaxPerWorkspace int           `yaml:"max_per_workspace" env:"DOMAINS_MAX_PER_WORKSPACE" env-default:"10"`
	MaxAttempts     int           `yaml:"max_attempts" env:"DOMAINS_MAX_ATTEMPTS" env-default:"10"`
	CheckTimeout    time.Duration `yaml:"check_timeout" env:"DOMAINS_CHECK_TIMEOUT" env-default:"15s"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load reads configuration from path when it exists, otherwise from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	log.Println("Config file not found, using environment variables only")
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

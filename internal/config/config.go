package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Queue struct {
		BatchSize     int      `yaml:"batch_size"`
		DrainInterval Duration `yaml:"drain_interval"`
	} `yaml:"queue"`

	Workers struct {
		GigSweepInterval Duration `yaml:"gig_sweep_interval"`
	} `yaml:"workers"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

// Duration wraps time.Duration so yaml values like "30s" or "1h" parse.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

var AppConfig *Config

// LoadConfig reads configuration from config.yaml, with DATABASE_URL and
// friends taking precedence when set. A .env file is loaded first if present.
func LoadConfig() {
	_ = godotenv.Load()

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			f.Close()
			log.Fatalf("failed to parse config file at %s: %v", configPath, err)
		}
		f.Close()
	} else if os.Getenv("DATABASE_URL") == "" {
		log.Fatalf("failed to open config file at %s: %v", configPath, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	AppConfig = &cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Queue.BatchSize == 0 {
		cfg.Queue.BatchSize = 50
	}
	if cfg.Queue.DrainInterval.Duration == 0 {
		cfg.Queue.DrainInterval.Duration = time.Minute
	}
	if cfg.Workers.GigSweepInterval.Duration == 0 {
		cfg.Workers.GigSweepInterval.Duration = time.Hour
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

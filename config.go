package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string         `yaml:"git_commit" envconfig:"LIBRARY_GIT_COMMIT"`
	GitTag             string         `yaml:"git_tag" envconfig:"LIBRARY_GIT_TAG"`
	BuildTime          string         `yaml:"build_time" envconfig:"LIBRARY_BUILD_TIME"`
	IsProduction       bool           `yaml:"is_production" envconfig:"LIBRARY_IS_PRODUCTION"`
	LogLevel           zapcore.Level  `yaml:"log_level" envconfig:"LIBRARY_LOG_LEVEL"`
	LogFolder          string         `yaml:"log_folder" envconfig:"LIBRARY_LOG_FOLDER"`
	LogMaxSize         int            `yaml:"log_max_size" envconfig:"LIBRARY_LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable bool           `yaml:"ops_endpoints_enable" envconfig:"LIBRARY_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool           `yaml:"profiler_enable" envconfig:"LIBRARY_PROFILER_ENABLE"`
	Server             ServerConfig   `yaml:"server"`
	Storage            StorageConfig  `yaml:"storage"`
	Redis              RedisConfig    `yaml:"redis"`
	BoltDB             BoltDBConfig   `yaml:"boltdb"`
	Postgres           PostgresConfig `yaml:"postgres"`
	Console            ConsoleConfig  `yaml:"console"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"LIBRARY_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"LIBRARY_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"LIBRARY_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"LIBRARY_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"LIBRARY_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"LIBRARY_SERVER_SHUTDOWN_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"LIBRARY_SERVER_RATE_LIMIT"` // requests per second and per source IP
	RateBurst       int           `yaml:"rate_burst" envconfig:"LIBRARY_SERVER_RATE_BURST"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"LIBRARY_STORAGE_DRIVER"`
	// Mirror replays every change into the bolt database. Only used with the redis driver.
	Mirror bool `yaml:"mirror" envconfig:"LIBRARY_STORAGE_MIRROR"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LIBRARY_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"LIBRARY_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LIBRARY_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LIBRARY_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LIBRARY_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LIBRARY_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LIBRARY_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"LIBRARY_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"LIBRARY_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LIBRARY_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath string        `yaml:"filepath" envconfig:"LIBRARY_BOLTDB_FILE_PATH"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"LIBRARY_BOLTDB_TIMEOUT"`
}

type PostgresConfig struct {
	URL      string `yaml:"url" envconfig:"LIBRARY_POSTGRES_URL" json:"-"`
	MaxConns int32  `yaml:"max_conns" envconfig:"LIBRARY_POSTGRES_MAX_CONNS"`
}

// ConsoleConfig drives the console and seed commands.
type ConsoleConfig struct {
	APIURL         string        `yaml:"api_url" envconfig:"LIBRARY_CONSOLE_API_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"LIBRARY_CONSOLE_REQUEST_TIMEOUT"`
	// Reconcile reloads a page collection after each successful mutation.
	Reconcile bool `yaml:"reconcile" envconfig:"LIBRARY_CONSOLE_RECONCILE"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if config.LogFolder == "" {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}

	if config.Server.RateLimit <= 0 {
		config.Server.RateLimit = 20
	}

	if config.Server.RateBurst <= 0 {
		config.Server.RateBurst = 40
	}

	if config.Storage.Driver == "" {
		config.Storage.Driver = RedisDriver
	}

	if config.BoltDB.Timeout == 0 {
		config.BoltDB.Timeout = time.Second
	}

	if config.Console.APIURL == "" {
		config.Console.APIURL = "http://localhost:8080"
	}

	if config.Console.RequestTimeout == 0 {
		config.Console.RequestTimeout = 10 * time.Second
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	switch config.Storage.Driver {
	case RedisDriver:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
		if config.Storage.Mirror && config.BoltDB.FilePath == "" {
			return errors.New("make sure to set the boltdb file path when the mirror is enabled")
		}
	case BoltDriver:
		if config.BoltDB.FilePath == "" {
			return errors.New("make sure to set the boltdb file path in configuration file")
		}
	case PostgresDriver:
		if config.Postgres.URL == "" {
			return errors.New("make sure to set the postgres url in configuration file")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The env file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `LIBRARY`.
	err = LoadConfigEnvs("LIBRARY", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}

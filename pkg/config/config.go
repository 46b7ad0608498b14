package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Input struct {
		CSVPath    string `yaml:"csv_path"`
		DateColumn string `yaml:"date_column"`
		LogReturns bool   `yaml:"log_returns"`
	} `yaml:"input"`
	Pipeline struct {
		Start  int `yaml:"start"`
		End    int `yaml:"end"`
		Window int `yaml:"window"`

		MaxComplexDimension  int     `yaml:"max_complex_dimension"`
		MaxEdgeLength        float64 `yaml:"max_edge_length"`
		CollapseEdges        bool    `yaml:"collapse_edges"`
		MaxHomologyDimension int     `yaml:"max_homology_dimension"`
		OnlyThisDimension    *int    `yaml:"only_this_dimension"`
		CoefficientField     uint64  `yaml:"coefficient_field"`
		MinPersistence       float64 `yaml:"min_persistence"`
		Parallelism          int     `yaml:"parallelism"`

		Landscape struct {
			Layers     int `yaml:"layers"`
			Resolution int `yaml:"resolution"`
		} `yaml:"landscape"`
	} `yaml:"pipeline"`
	Sink struct {
		Type string `yaml:"type"` // clickhouse, kafka, both, none
	} `yaml:"sink"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		MemSize int           `yaml:"mem_size"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Stream struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
	} `yaml:"stream"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("INPUT_CSV"); v != "" {
		c.Input.CSVPath = v
	}
	if v := os.Getenv("SINK"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

// Validate checks structural configuration; pipeline parameters get the
// detailed fail-fast treatment in the stage constructors.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Sink.Type {
	case "clickhouse", "kafka", "both", "none":
	default:
		return fmt.Errorf("sink.type must be one of clickhouse, kafka, both, none; got '%s'", c.Sink.Type)
	}
	if c.Pipeline.Window < 1 {
		return fmt.Errorf("pipeline.window must be >= 1, got %d", c.Pipeline.Window)
	}
	if c.Input.CSVPath == "" {
		return fmt.Errorf("input.csv_path is required")
	}
	if c.Sink.Type == "kafka" || c.Sink.Type == "both" {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty for sink.type '%s'", c.Sink.Type)
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required for sink.type '%s'", c.Sink.Type)
		}
	}
	if c.Sink.Type == "clickhouse" || c.Sink.Type == "both" {
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for sink.type '%s'", c.Sink.Type)
		}
	}
	return nil
}

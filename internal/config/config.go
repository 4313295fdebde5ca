package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultConfigPath = "config/config.yml"

type Config struct {
	Debug       bool
	Port        string
	ConfigPath  string
	S3Bucket    string
	S3Key       string
	SinkTimeout time.Duration
	Mongo       MongoConfig
}

type MongoConfig struct {
	URI                  string
	User                 string
	Password             string
	ClusterURL           string
	Database             string
	SensorCollection     string
	ThermostatCollection string
}

// ConnectionString returns MONGO_URI when set, otherwise the Atlas SRV URI built from the parts.
func (m MongoConfig) ConnectionString() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{
		Scheme: "mongodb+srv",
		User:   url.UserPassword(m.User, m.Password),
		Host:   m.ClusterURL,
		Path:   "/" + m.Database,
	}
	return u.String()
}

// LoadDotEnv reads a .env file when present. Variables already set win.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		slog.Warn("falha ao ler arquivo .env", "error", err)
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		Debug:      parseBool(os.Getenv("DEBUG")),
		Port:       getEnv("PORT", "5000"),
		ConfigPath: getEnv("CFG_PATH", DefaultConfigPath),
		S3Bucket:   strings.TrimSpace(os.Getenv("CONFIG_S3_BUCKET")),
		Mongo: MongoConfig{
			URI:                  strings.TrimSpace(os.Getenv("MONGO_URI")),
			User:                 strings.TrimSpace(os.Getenv("USER_NAME")),
			Password:             os.Getenv("PASSWORD"),
			ClusterURL:           strings.TrimSpace(os.Getenv("CLUSTER_URL")),
			Database:             strings.TrimSpace(os.Getenv("DB_NAME")),
			SensorCollection:     strings.TrimSpace(os.Getenv("SENSOR_DATA_NAME")),
			ThermostatCollection: strings.TrimSpace(os.Getenv("THERMOSTAT_DATA_NAME")),
		},
	}
	cfg.S3Key = getEnv("CONFIG_S3_KEY", cfg.ConfigPath)

	timeout, err := time.ParseDuration(getEnv("SINK_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("SINK_TIMEOUT inválido: %q", os.Getenv("SINK_TIMEOUT"))
	}
	cfg.SinkTimeout = timeout

	required := []struct{ key, val string }{
		{"DB_NAME", cfg.Mongo.Database},
		{"SENSOR_DATA_NAME", cfg.Mongo.SensorCollection},
		{"THERMOSTAT_DATA_NAME", cfg.Mongo.ThermostatCollection},
	}
	if cfg.Mongo.URI == "" {
		required = append(required,
			struct{ key, val string }{"USER_NAME", cfg.Mongo.User},
			struct{ key, val string }{"PASSWORD", cfg.Mongo.Password},
			struct{ key, val string }{"CLUSTER_URL", cfg.Mongo.ClusterURL},
		)
	}
	for _, r := range required {
		if r.val == "" {
			return nil, fmt.Errorf("variável de ambiente %s não definida", r.key)
		}
	}

	return cfg, nil
}

// LogValue keeps the password out of the logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("debug", c.Debug),
		slog.String("port", c.Port),
		slog.String("cfg_path", c.ConfigPath),
		slog.String("s3_bucket", c.S3Bucket),
		slog.String("s3_key", c.S3Key),
		slog.Duration("sink_timeout", c.SinkTimeout),
		slog.String("user_name", c.Mongo.User),
		slog.String("cluster_url", c.Mongo.ClusterURL),
		slog.String("db_name", c.Mongo.Database),
		slog.String("sensor_data_name", c.Mongo.SensorCollection),
		slog.String("thermostat_data_name", c.Mongo.ThermostatCollection),
	)
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

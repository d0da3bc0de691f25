package cmd

import (
	"fmt"
	"time"

	"deliveryhub/internal/adapters/out/postgres"
	"deliveryhub/internal/adapters/out/redisstore"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Tracking TrackingConfig
}

type AppConfig struct {
	ServiceName     string        `envconfig:"SERVICE_NAME" default:"deliveryhub"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

type HTTPConfig struct {
	Port string `envconfig:"HTTP_PORT" default:"8080"`
}

type DBConfig struct {
	Host            string        `envconfig:"DB_HOST" required:"true"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" required:"true"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Name            string        `envconfig:"DB_NAME" required:"true"`
	SslMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

func (c DBConfig) DSN() string {
	return postgres.DSN(c.Host, c.Port, c.User, c.Password, c.Name, c.SslMode)
}

func (c DBConfig) Pool() postgres.PoolOptions {
	return postgres.PoolOptions{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	Address      string        `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"2s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"2s"`
	DedupTTL     time.Duration `envconfig:"REDIS_DEDUP_TTL" default:"48h"`
	CacheTTL     time.Duration `envconfig:"REDIS_CACHE_TTL" default:"5m"`
}

func (c RedisConfig) Options() redisstore.Options {
	return redisstore.Options{
		URL:          c.URL,
		Address:      c.Address,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

type KafkaConfig struct {
	Enabled             bool     `envconfig:"KAFKA_ENABLED" default:"true"`
	Brokers             []string `envconfig:"KAFKA_HOST" default:"localhost:9092"`
	ConsumerGroup       string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"deliveryhub"`
	OrderConfirmedTopic string   `envconfig:"KAFKA_ORDER_CONFIRMED_TOPIC" default:"order.confirmed"`
	DeliveryEventsTopic string   `envconfig:"KAFKA_DELIVERY_EVENTS_TOPIC" default:"delivery.events"`
	ConsumerWorkers     int      `envconfig:"KAFKA_CONSUMER_WORKERS" default:"4"`
	ProducerBuffer      int      `envconfig:"KAFKA_PRODUCER_BUFFER" default:"1024"`
}

type TrackingConfig struct {
	Retention      time.Duration `envconfig:"TRACKING_RETENTION" default:"1h"`
	SweepSchedule  string        `envconfig:"TRACKING_SWEEP_SCHEDULE" default:"0 * * * * *"`
	SendBuffer     int           `envconfig:"WS_SEND_BUFFER" default:"64"`
	PongWait       time.Duration `envconfig:"WS_PONG_WAIT" default:"60s"`
	WriteWait      time.Duration `envconfig:"WS_WRITE_WAIT" default:"10s"`
	MaxMessageSize int64         `envconfig:"WS_MAX_MESSAGE_SIZE" default:"4096"`
	AllowedOrigins []string      `envconfig:"WS_ALLOWED_ORIGINS"`
}

// LoadConfig reads the configuration from the environment. Call godotenv.Load
// first to pick up a local .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

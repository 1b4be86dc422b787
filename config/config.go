package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Settings struct {
	Log      LogSettings      `mapstructure:"log"`
	HTTP     HTTPSettings     `mapstructure:"http"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
	Chat     ChatSettings     `mapstructure:"chat"`
	Uploads  UploadSettings   `mapstructure:"uploads"`
	Gateway  GatewaySettings  `mapstructure:"gateway"`
	Client   ClientSettings   `mapstructure:"client"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type HTTPSettings struct {
	OrderAddr   string `mapstructure:"order_addr"`
	ChatAddr    string `mapstructure:"chat_addr"`
	GatewayAddr string `mapstructure:"gateway_addr"`
	// PublicURL is embedded into pickup QR codes.
	PublicURL string `mapstructure:"public_url"`
}

type PostgresSettings struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the keyword/value form understood by both lib/pq and pgx.
func (p PostgresSettings) DSN() string {
	return "host=" + p.Host + " port=" + p.Port + " user=" + p.User +
		" password=" + p.Password + " dbname=" + p.Name + " sslmode=" + p.SSLMode
}

type RedisSettings struct {
	Addr    string        `mapstructure:"addr"`
	MenuTTL time.Duration `mapstructure:"menu_ttl"`
}

type KafkaSettings struct {
	Brokers    []string `mapstructure:"brokers"`
	OrderTopic string   `mapstructure:"order_topic"`
	ChatTopic  string   `mapstructure:"chat_topic"`
	GroupID    string   `mapstructure:"group_id"`
}

type ChatSettings struct {
	Retention time.Duration `mapstructure:"retention"`
	MaxLength int           `mapstructure:"max_length"`
}

type UploadSettings struct {
	Dir      string `mapstructure:"dir"`
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Region string `mapstructure:"s3_region"`
}

type GatewaySettings struct {
	OrderSvcURL string `mapstructure:"order_svc_url"`
	ChatSvcURL  string `mapstructure:"chat_svc_url"`
}

type ClientSettings struct {
	BaseURL string        `mapstructure:"base_url"`
	WSURL   string        `mapstructure:"ws_url"`
	DBPath  string        `mapstructure:"db_path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"log.level":             "info",
	"log.file":              "",
	"http.order_addr":       ":8081",
	"http.chat_addr":        ":8082",
	"http.gateway_addr":     ":8080",
	"http.public_url":       "http://localhost:8080",
	"postgres.host":         "localhost",
	"postgres.port":         "5432",
	"postgres.name":         "delivery",
	"postgres.user":         "postgres",
	"postgres.password":     "postgres",
	"postgres.sslmode":      "disable",
	"redis.addr":            "localhost:6379",
	"redis.menu_ttl":        "10m",
	"kafka.brokers":         "localhost:9092",
	"kafka.order_topic":     "order-events",
	"kafka.chat_topic":      "chat-messages",
	"kafka.group_id":        "chat-svc",
	"chat.retention":        "3h",
	"chat.max_length":       500,
	"uploads.dir":           "./uploads",
	"uploads.s3_bucket":     "",
	"uploads.s3_region":     "us-east-1",
	"gateway.order_svc_url": "http://localhost:8081",
	"gateway.chat_svc_url":  "http://localhost:8082",
	"client.base_url":       "http://localhost:8080",
	"client.ws_url":         "ws://localhost:8080/ws",
	"client.db_path":        "delivery.db",
	"client.timeout":        "10s",
}

// Environment names the services were deployed with before the config file existed.
var legacyEnv = map[string][]string{
	"postgres.host":     {"POSTGRES_HOST", "DB_HOST"},
	"postgres.port":     {"POSTGRES_PORT", "DB_PORT"},
	"postgres.name":     {"POSTGRES_NAME", "DB_NAME"},
	"postgres.user":     {"POSTGRES_USER", "DB_USER"},
	"postgres.password": {"POSTGRES_PASSWORD", "DB_PASSWORD"},
	"kafka.brokers":     {"KAFKA_BROKERS", "KAFKA_BROKER"},
}

// Load reads settings from defaults, an optional config file, a .env file and the environment.
// A nil v uses a fresh viper instance.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if v == nil {
		v = viper.New()
	}

	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, envs := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var settings Settings
	decoderConfigOption := viper.DecoderConfigOption(func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&settings, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &settings, nil
}

func MustInitPostgres(cfg PostgresSettings) *sql.DB {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitPgxPool(ctx context.Context, cfg PostgresSettings) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("Failed to create pgx pool:", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return pool
}

func MustInitRedis(cfg RedisSettings) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(cfg KafkaSettings, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// NewKafkaFanoutReader joins a consumer group of its own so every instance sees every
// message. It starts from the newest offset; history is served from storage.
func NewKafkaFanoutReader(cfg KafkaSettings, topic, instanceID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.GroupID + "-" + instanceID,
		StartOffset: kafka.LastOffset,
	})
}

func NewKafkaWriter(cfg KafkaSettings, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

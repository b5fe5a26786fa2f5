package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 服务配置
type Config struct {
	Env     string        `mapstructure:"env" validate:"oneof=development production test"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"database"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Shopee  ShopeeConfig  `mapstructure:"shopee"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Task    TaskConfig    `mapstructure:"task"`
}

// LogConfig 日志
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
}

// DBConfig 数据库
type DBConfig struct {
	DSN          string `mapstructure:"url" validate:"required"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RedisConfig 缓存，Addr 为空时使用进程内缓存
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig 通知外发，Brokers 为空时关闭
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// ShopeeConfig Shopee Open API
type ShopeeConfig struct {
	PartnerID  int64         `mapstructure:"partner_id"`
	PartnerKey string        `mapstructure:"partner_key"`
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit" validate:"gt=0"`
}

// AuthConfig Supabase JWT，Secret 为空时不校验
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// SyncConfig 同步参数
type SyncConfig struct {
	DefaultDays int           `mapstructure:"default_days" validate:"gt=0"`
	PageSize    int           `mapstructure:"page_size" validate:"gt=0,lte=100"`
	BatchSize   int           `mapstructure:"batch_size" validate:"gt=0,lte=50"`
	Parallelism int           `mapstructure:"parallelism" validate:"gt=0"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
}

// WebhookConfig 推送处理
type WebhookConfig struct {
	Workers   int `mapstructure:"workers" validate:"gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`
}

// TaskConfig 定时任务
type TaskConfig struct {
	SyncEnabled     bool   `mapstructure:"sync_enabled"`
	SyncSpec        string `mapstructure:"sync_spec"`
	SyncConcurrency int    `mapstructure:"sync_concurrency" validate:"gt=0"`
	TokenEnabled    bool   `mapstructure:"token_enabled"`
	TokenSpec       string `mapstructure:"token_spec"`
}

// ==================== 加载 ====================

// Load 加载配置
// 顺序：.env -> config.yaml（可选）-> 环境变量（DATABASE_URL, SHOPEE_PARTNER_ID ...）
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.port", "10000")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origin", "*")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "shopee.notifications")

	v.SetDefault("shopee.partner_id", 0)
	v.SetDefault("shopee.partner_key", "")
	v.SetDefault("shopee.base_url", "https://partner.shopeemobile.com")
	v.SetDefault("shopee.timeout", 30*time.Second)
	v.SetDefault("shopee.rate_limit", 10.0)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("sync.default_days", 7)
	v.SetDefault("sync.page_size", 50)
	v.SetDefault("sync.batch_size", 20)
	v.SetDefault("sync.parallelism", 5)
	v.SetDefault("sync.cooldown", 30*time.Second)

	v.SetDefault("webhook.workers", 8)
	v.SetDefault("webhook.queue_size", 256)

	v.SetDefault("task.sync_enabled", true)
	v.SetDefault("task.sync_spec", "0 */15 * * * *")
	v.SetDefault("task.sync_concurrency", 5)
	v.SetDefault("task.token_enabled", true)
	v.SetDefault("task.token_spec", "0 */30 * * * *")
}

// bindLegacyEnv 兼容部署环境中已有的变量名
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("shopee.partner_id", "SHOPEE_PARTNER_ID")
	_ = v.BindEnv("shopee.partner_key", "SHOPEE_PARTNER_KEY")
	_ = v.BindEnv("auth.jwt_secret", "SUPABASE_JWT_SECRET")
}

package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	App       AppConfig       `mapstructure:"app"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Push      PushConfig      `mapstructure:"push"`
	Store     StoreConfig     `mapstructure:"store"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PublicBaseURL   string `mapstructure:"public_base_url"` // CDN 域名，为空时使用 bucket.endpoint
}

type PushConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	AppKey          int64  `mapstructure:"app_key"`
	RegionID        string `mapstructure:"region_id"`
	OperatorAccount string `mapstructure:"operator_account"` // 接收新支付凭证提醒的运营账号
}

// StoreConfig 店铺与收款配置
type StoreConfig struct {
	UnitPrice         int64  `mapstructure:"unit_price"` // 单盒价格 FCFA
	Currency          string `mapstructure:"currency"`
	OrangeMoneyNumber string `mapstructure:"orange_money_number"`
	WavePaymentLink   string `mapstructure:"wave_payment_link"`
	WaveQRCodeURL     string `mapstructure:"wave_qr_code_url"`
	WhatsAppNumber    string `mapstructure:"whatsapp_number"`
}

// UploadConfig 上传限制与存储桶
type UploadConfig struct {
	ProofBucket   string `mapstructure:"proof_bucket"`
	ProofMaxBytes int64  `mapstructure:"proof_max_bytes"`
	VideoBucket   string `mapstructure:"video_bucket"`
	VideoMaxBytes int64  `mapstructure:"video_max_bytes"`
}

// ReconcileConfig 滞留订单巡检
type ReconcileConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval"`
	PendingTimeout time.Duration `mapstructure:"pending_timeout"`
	AutoCancel     bool          `mapstructure:"auto_cancel"`
	BatchSize      int           `mapstructure:"batch_size"`
}

type RealtimeConfig struct {
	Channel string `mapstructure:"channel"` // Redis pub/sub 频道
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	// Redis 配置验证
	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Store.UnitPrice <= 0 {
		return errors.New("store.unit_price must be positive")
	}
	if c.Store.OrangeMoneyNumber == "" || c.Store.WavePaymentLink == "" {
		return errors.New("payment instructions are incomplete")
	}

	if c.Upload.ProofMaxBytes <= 0 || c.Upload.VideoMaxBytes <= 0 {
		return errors.New("upload limits must be positive")
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allow_origins", []string{"*"})
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)

	viper.SetDefault("store.unit_price", 25800)
	viper.SetDefault("store.currency", "FCFA")
	viper.SetDefault("store.orange_money_number", "+221776344286")
	viper.SetDefault("store.wave_payment_link", "https://pay.wave.com/m/M_MO1NT4Bhh6eN/c/sn/")

	viper.SetDefault("upload.proof_bucket", "payment-proofs")
	viper.SetDefault("upload.proof_max_bytes", 5*1024*1024)
	viper.SetDefault("upload.video_bucket", "videos")
	viper.SetDefault("upload.video_max_bytes", 50*1024*1024)

	viper.SetDefault("reconcile.enabled", true)
	viper.SetDefault("reconcile.interval", 10*time.Minute)
	viper.SetDefault("reconcile.pending_timeout", 48*time.Hour)
	viper.SetDefault("reconcile.auto_cancel", false)
	viper.SetDefault("reconcile.batch_size", 100)

	viper.SetDefault("realtime.channel", "storefront:changes")
}

// LoadConfig 加载配置
func LoadConfig() {
	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}

	// 验证配置
	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}

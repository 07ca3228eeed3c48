package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"shortly-platform/pkg/database"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Cache     Cache     `yaml:"cache"`
	Auth      Auth      `yaml:"auth"`
	RateLimit Limit     `yaml:"rate_limit"`
	Geo       Geo       `yaml:"geo"`
	Chat      Chat      `yaml:"chat"`
	ShortCode ShortCode `yaml:"shortcode"`
	Log       Log       `yaml:"log"`
	CORS      CORS      `yaml:"cors"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
	// BaseURL 用于拼接对外暴露的短链接，为空时使用请求的 scheme://host
	BaseURL string `yaml:"base_url"`
}

// IsProduction 是否为生产模式
func (a App) IsProduction() bool {
	return a.Mode == "production"
}

// 服务器配置
type Server struct {
	Port            int `yaml:"port"`
	ReadTimeout     int `yaml:"read_timeout"`
	WriteTimeout    int `yaml:"write_timeout"`
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

// 数据库配置
type DB struct {
	Driver   string `yaml:"driver"` // mysql | postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	SSLMode  string `yaml:"sslmode"`
	// Path 仅在 sqlite 下使用
	Path string `yaml:"path"`
}

// 缓存配置（Redis）
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// LinkTTL 短链接缓存时间，单位秒
	LinkTTL int `yaml:"link_ttl"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
	CookieName      string `yaml:"cookie_name"`
	MinPassword     int    `yaml:"min_password_length"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests"`
	Window    int      `yaml:"window_seconds"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 地理位置解析配置
type Geo struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	// Timeout 单次查询超时，单位毫秒
	Timeout int `yaml:"timeout_ms"`
	// CacheTTL 查询结果缓存时间，单位秒
	CacheTTL int `yaml:"cache_ttl"`
	// BreakerFailures 连续失败多少次后熔断
	BreakerFailures uint32 `yaml:"breaker_failures"`
	// BreakerCooldown 熔断后多久进入半开，单位秒
	BreakerCooldown int `yaml:"breaker_cooldown"`
}

// 问答代理配置
type Chat struct {
	Endpoint string `yaml:"endpoint"`
	// Timeout 上游超时，单位秒
	Timeout int `yaml:"timeout"`
}

// 短码生成配置
type ShortCode struct {
	Strategy   string `yaml:"strategy"` // random | shortid
	Length     int    `yaml:"length"`
	PoolSize   int    `yaml:"pool_size"`
	MaxRetries int    `yaml:"max_retries"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// 跨域配置
type CORS struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// 加载配置: 先读 YAML，再用 .env / 环境变量覆盖敏感项
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// .env 不存在不算错误
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		App:    App{Name: "shortly", Mode: "debug", Version: "1.0.0"},
		Server: Server{Port: 8080, ReadTimeout: 10, WriteTimeout: 70, ShutdownTimeout: 10},
		Database: DB{
			Driver:  "mysql",
			Host:    "127.0.0.1",
			Port:    3306,
			Charset: "utf8mb4",
			SSLMode: "disable",
			Path:    "shortly.db",
		},
		Cache: Cache{Port: 6379, LinkTTL: 86400},
		Auth: Auth{
			Issuer:          "shortly",
			ExpirationHours: 24,
			CookieName:      "token",
			MinPassword:     8,
		},
		RateLimit: Limit{Enabled: true, Requests: 100, Window: 900, Burst: 100},
		Geo: Geo{
			Enabled:         true,
			Endpoint:        "http://ip-api.com/json",
			Timeout:         3000,
			CacheTTL:        86400,
			BreakerFailures: 5,
			BreakerCooldown: 60,
		},
		Chat:      Chat{Timeout: 60},
		ShortCode: ShortCode{Strategy: "random", Length: 7, PoolSize: 1000, MaxRetries: 5},
		Log:       Log{Level: "info", File: "./logs/app.log", MaxSize: 10, MaxBackups: 5, MaxAge: 30},
	}
}

// Validate 校验配置的合法性
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret 不能为空")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	switch c.ShortCode.Strategy {
	case "random", "shortid":
	default:
		return fmt.Errorf("不支持的短码策略: %q", c.ShortCode.Strategy)
	}
	if c.ShortCode.Length <= 0 || c.ShortCode.MaxRetries <= 0 {
		return errors.New("shortcode.length 与 shortcode.max_retries 必须大于 0")
	}
	if c.Geo.Timeout <= 0 || c.Chat.Timeout <= 0 {
		return errors.New("geo.timeout_ms 与 chat.timeout 必须大于 0")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate_limit.requests 与 rate_limit.window_seconds 必须大于 0")
	}
	return nil
}

// GeoTimeout 地理位置查询超时
func (c *Config) GeoTimeout() time.Duration {
	return time.Duration(c.Geo.Timeout) * time.Millisecond
}

// DatabaseOptions 转换为数据库连接参数，非生产模式打印 SQL
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		Driver:   c.Database.Driver,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Name:     c.Database.Name,
		Charset:  c.Database.Charset,
		SSLMode:  c.Database.SSLMode,
		Path:     c.Database.Path,
		Debug:    !c.App.IsProduction(),
	}
}

// ChatTimeout 问答代理超时
func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.Chat.Timeout) * time.Second
}

// 环境变量覆盖
func applyEnv(cfg *Config) {
	setString(&cfg.App.Mode, "APP_MODE")
	setString(&cfg.App.BaseURL, "APP_BASE_URL")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Cache.Host, "REDIS_HOST")
	setInt(&cfg.Cache.Port, "REDIS_PORT")
	setString(&cfg.Cache.Password, "REDIS_PASSWORD")
	setString(&cfg.Auth.Secret, "AUTH_SECRET")
	setString(&cfg.Chat.Endpoint, "CHAT_API_URL")
	setString(&cfg.Geo.Endpoint, "GEO_API_URL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

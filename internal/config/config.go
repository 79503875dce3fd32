package config

import (
	"time"

	"github.com/blues/trs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Social   SocialConfig   `mapstructure:"social"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Claim    ClaimConfig    `mapstructure:"claim"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 校验结果缓存，addr 为空时退化为进程内缓存
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ChainConfig 链上查证配置
type ChainConfig struct {
	RpcUrl        string `mapstructure:"rpc_url"`        // RPC节点URL
	TokenAddress  string `mapstructure:"token_address"`  // 代币合约地址
	Confirmations int    `mapstructure:"confirmations"`  // 确认区块数
	LookbackBlock int64  `mapstructure:"lookback_block"` // 事件回溯的区块数量
}

// SocialConfig 外部校验服务配置
type SocialConfig struct {
	TwitterBaseUrl  string `mapstructure:"twitter_base_url"`
	TelegramBaseUrl string `mapstructure:"telegram_base_url"`
	TelegramChatId  string `mapstructure:"telegram_chat_id"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// AdminConfig 管理员地址白名单
type AdminConfig struct {
	Addresses []string `mapstructure:"addresses"`
}

// ClaimConfig 各领取类型的窗口和奖励配置
type ClaimConfig struct {
	DailyWindowHours    int    `mapstructure:"daily_window_hours"`
	SpecialWindowHours  int    `mapstructure:"special_window_hours"`
	CashbackWindowHours int    `mapstructure:"cashback_window_hours"`
	SwapWindowHours     int    `mapstructure:"swap_window_hours"`
	ReferralWindowHours int    `mapstructure:"referral_window_hours"`
	DailyReward         string `mapstructure:"daily_reward"`
	SpecialReward       string `mapstructure:"special_reward"`
	ReferralReward      string `mapstructure:"referral_reward"`
	CashbackRate        string `mapstructure:"cashback_rate"`
	SwapRate            string `mapstructure:"swap_rate"`
	CacheTTLMinutes     int    `mapstructure:"cache_ttl_minutes"`
}

// CacheTTL 校验结果缓存的存活时长
func (c ClaimConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/trs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "taskreward")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("chain.confirmations", 12)
	viper.SetDefault("chain.lookback_block", 5000)
	viper.SetDefault("social.timeout_seconds", 10)
	viper.SetDefault("claim.daily_window_hours", 24)
	viper.SetDefault("claim.special_window_hours", 3)
	viper.SetDefault("claim.cashback_window_hours", 3)
	viper.SetDefault("claim.swap_window_hours", 24)
	viper.SetDefault("claim.referral_window_hours", 24)
	viper.SetDefault("claim.daily_reward", "100")
	viper.SetDefault("claim.special_reward", "500")
	viper.SetDefault("claim.referral_reward", "200")
	viper.SetDefault("claim.cashback_rate", "0.03")
	viper.SetDefault("claim.swap_rate", "0.01")
	viper.SetDefault("claim.cache_ttl_minutes", 5)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

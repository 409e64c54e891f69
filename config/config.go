package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Platform PlatformConfig `mapstructure:"platform"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"` // 含 {CHECKOUT_SESSION_ID} 占位符
	CancelURL     string `mapstructure:"cancel_url"`
	APIBase       string `mapstructure:"api_base"`
}

type PlatformConfig struct {
	AudiobookFeePercentage        decimal.Decimal             `mapstructure:"audiobook_fee_percentage"` // 平台抽成百分比，如 10 表示 10%
	CoinPacks                     map[string]CoinPack         `mapstructure:"coin_packs"`               // key 为金币数量
	SubscriptionPlans             map[string]SubscriptionPlan `mapstructure:"subscription_plans"`       // monthly / annual
	MinWithdrawalAmount           decimal.Decimal             `mapstructure:"min_withdrawal_amount"`
	WithdrawalCancelWindowMinutes int                         `mapstructure:"withdrawal_cancel_window_minutes"`
	Currency                      string                      `mapstructure:"currency"`
}

type CoinPack struct {
	Name  string          `mapstructure:"name"`
	Price decimal.Decimal `mapstructure:"price"`
}

type SubscriptionPlan struct {
	Name         string          `mapstructure:"name"`
	Price        decimal.Decimal `mapstructure:"price"`
	DurationDays int             `mapstructure:"duration_days"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// AudiobookFeePct 平台抽成百分比（定点小数）
func (p *PlatformConfig) AudiobookFeePct() decimal.Decimal {
	return p.AudiobookFeePercentage
}

// MinWithdrawal 提现最低金额（定点小数）
func (p *PlatformConfig) MinWithdrawal() decimal.Decimal {
	return p.MinWithdrawalAmount
}

// decimalDecodeHook 把配置里的金额解析为定点小数。
// yaml 里金额建议加引号写成字符串，未加引号的数字也按
// 十进制字面量重排，不走二进制浮点。
func decimalDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromString(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return data, nil
	}
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalDecodeHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, err
	}

	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/streamsentry/streamsentry/pkg/common"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	FactCheck  FactCheckConfig  `mapstructure:"fact_check"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ModerationConfig selects the classification strategy and carries the
// settings each classifier decodes for itself (see detector.DecodeSettings).
type ModerationConfig struct {
	Strategy string                 `mapstructure:"strategy"`
	Settings map[string]interface{} `mapstructure:"settings"`

	OpenAIKey       string        `mapstructure:"openai_key"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type FactCheckConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WebSocketConfig struct {
	MaxConnections int    `mapstructure:"max_connections"`
	PongWait       string `mapstructure:"pong_wait"`
	PingPeriod     string `mapstructure:"ping_period"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	setDefaultValues()
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Moderation.Strategy == "" {
		globalConfig.Moderation.Strategy = common.StrategyKeyword
	}
	if globalConfig.Moderation.RequestTimeout == 0 {
		globalConfig.Moderation.RequestTimeout = 10 * time.Second
	}
	if globalConfig.Moderation.TimeoutDuration == 0 {
		globalConfig.Moderation.TimeoutDuration = common.DefaultTimeoutDuration
	}
	if globalConfig.FactCheck.Timeout == 0 {
		globalConfig.FactCheck.Timeout = 5 * time.Second
	}
	if globalConfig.WebSocket.MaxConnections == 0 {
		globalConfig.WebSocket.MaxConnections = 1024
	}
}

func GetConfig() *Config {
	return &globalConfig
}

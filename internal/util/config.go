package util

import (
	"time"

	"github.com/spf13/viper"
)

// Config 保存应用的全部配置，由 viper 从 app.env 或环境变量读取
type Config struct {
	DBDriver             string        `mapstructure:"DB_DRIVER"`
	DBSource             string        `mapstructure:"DB_SOURCE"`
	RedisAddress         string        `mapstructure:"REDIS_ADDRESS"`
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	MCPServerAddress     string        `mapstructure:"MCP_SERVER_ADDRESS"`
	MCPServiceUserID     int64         `mapstructure:"MCP_SERVICE_USER_ID"`
	AccessTokenSecret    string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret   string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	ClickChannelSize     int           `mapstructure:"CLICK_CHANNEL_SIZE"`
	ClickFlushInterval   time.Duration `mapstructure:"CLICK_FLUSH_INTERVAL"`
	CORSAllowOrigins     []string      `mapstructure:"CORS_ALLOW_ORIGINS"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	viper.SetDefault("MCP_SERVER_ADDRESS", "")
	viper.SetDefault("ACCESS_TOKEN_DURATION", "30m")
	viper.SetDefault("REFRESH_TOKEN_DURATION", "168h")
	viper.SetDefault("CLICK_CHANNEL_SIZE", 10240)
	viper.SetDefault("CLICK_FLUSH_INTERVAL", "5s")
	viper.SetDefault("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"})

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		// 没有配置文件时允许完全使用环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

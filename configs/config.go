package configs

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	config *Config
	once   sync.Once
)

type Config struct {
	ApiBaseUrl     string
	SocketUrl      string
	Token          string
	ConversationId string
	PageSize       int
	InvertedList   bool
	CachePath      string
	RequestTimeout time.Duration
	ReconnectWait  time.Duration
	LogLevel       string
}

func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetDefault("api_base_url", "http://localhost:8000")
		v.SetDefault("socket_url", "ws://localhost:8000/ws")
		v.SetDefault("token", "")
		v.SetDefault("conversation_id", "")
		v.SetDefault("page_size", 10)
		v.SetDefault("inverted_list", false)
		v.SetDefault("cache_path", "nightchat.db")
		v.SetDefault("request_timeout", "10s")
		v.SetDefault("reconnect_wait", "3s")
		v.SetDefault("log_level", "info")

		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.SetEnvPrefix("NIGHTCHAT")
		v.AutomaticEnv()

		// A missing config file is fine, defaults and env cover it.
		_ = v.ReadInConfig()

		config = &Config{
			ApiBaseUrl:     v.GetString("api_base_url"),
			SocketUrl:      v.GetString("socket_url"),
			Token:          v.GetString("token"),
			ConversationId: v.GetString("conversation_id"),
			PageSize:       v.GetInt("page_size"),
			InvertedList:   v.GetBool("inverted_list"),
			CachePath:      v.GetString("cache_path"),
			RequestTimeout: v.GetDuration("request_timeout"),
			ReconnectWait:  v.GetDuration("reconnect_wait"),
			LogLevel:       v.GetString("log_level"),
		}
	})
	return config
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Game   GameConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// GameConfig 遊戲大廳的逾時設定，單位為秒
type GameConfig struct {
	OnlineTTL     int `mapstructure:"online_ttl"`
	InviteTTL     int `mapstructure:"invite_ttl"`
	RoomTTL       int `mapstructure:"room_ttl"`
	SweepInterval int `mapstructure:"sweep_interval"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// 預設值，讓沒有 game 區段的舊設定檔也能運作
	viper.SetDefault("game.online_ttl", 30)
	viper.SetDefault("game.invite_ttl", 60)
	viper.SetDefault("game.room_ttl", 3600)
	viper.SetDefault("game.sweep_interval", 30)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (g GameConfig) OnlineTTLDuration() time.Duration {
	return time.Duration(g.OnlineTTL) * time.Second
}

func (g GameConfig) InviteTTLDuration() time.Duration {
	return time.Duration(g.InviteTTL) * time.Second
}

func (g GameConfig) RoomTTLDuration() time.Duration {
	return time.Duration(g.RoomTTL) * time.Second
}

func (g GameConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(g.SweepInterval) * time.Second
}

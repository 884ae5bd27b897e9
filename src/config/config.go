package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
}

type ServiceConfig struct {
	Port string `mapstructure:"port"`
	// RefreshCron, when set, schedules a periodic refresh of every company
	// holding a stored API token (e.g. "0 3 * * *").
	RefreshCron string `mapstructure:"refreshCron"`
	LogLevel    string `mapstructure:"logLevel"`
}

type DatabasesConfig struct {
	SQL SQLConfig `mapstructure:"sql"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	// SecretID, when set, overrides the connection string with the value
	// stored in AWS Secrets Manager.
	SecretID  string `mapstructure:"secretId"`
	AWSRegion string `mapstructure:"awsRegion"`
}

type ExternalClientConfig struct {
	Nibo NiboConfig `mapstructure:"nibo"`
}

type NiboConfig struct {
	BaseURL  string `mapstructure:"baseUrl"`
	PageSize int    `mapstructure:"pageSize"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadConfig loads a .env file from path (if present) and lets viper read every
// environment variable with lower-case keys ("APP_PORT" -> "app_port").
func LoadConfig(path string) {
	envFile := path + string(os.PathSeparator) + ".env"
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("[CONFIG] could not load %s: %v", envFile, err)
	}

	viper.SetConfigFile(envFile)
	viper.SetConfigType("env")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		logrus.Debugf("[CONFIG] no config file read: %v", err)
	}
}

// CreateFolder makes sure every folder exists.
func CreateFolder(folderPath ...string) error {
	for _, folder := range folderPath {
		if folder == "" {
			continue
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", folder, err)
		}
	}
	return nil
}

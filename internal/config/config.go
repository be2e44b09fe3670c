package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	DefaultTableName = "PackageScan"
	DefaultRegion    = "ca-central-1"
	DefaultIndexName = "b_name-received_date-index"
	DefaultLogLevel  = "info"
)

// Config settings for the cardctl command
type Config struct {
	TableName  string
	Region     string
	Endpoint   string
	IndexName  string
	UniqueMode string
	LogLevel   string
}

// Load read a .env file from the working directory if present, then the environment
func Load() Config {
	// a missing .env is fine, the environment is used as is
	_ = godotenv.Load()

	return Config{
		TableName:  getEnv("CARDSTORE_TABLE", DefaultTableName),
		Region:     getEnv("CARDSTORE_REGION", DefaultRegion),
		Endpoint:   getEnv("CARDSTORE_ENDPOINT", ""),
		IndexName:  getEnv("CARDSTORE_INDEX", DefaultIndexName),
		UniqueMode: getEnv("CARDSTORE_UNIQUE_MODE", "transaction"),
		LogLevel:   getEnv("CARDSTORE_LOG_LEVEL", DefaultLogLevel),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

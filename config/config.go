package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv              string
	AppPort             string
	AllowedOrigins      string
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBMaxIdleConns      int
	DBMaxOpenConns      int
	NatsURL             string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadDir           string
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("%s not set, defaulting to %s", key, defaultValue)
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

func Load() Config {
	log.Println("Loading configuration...")

	// Deployments historically ship a config.env alongside the binary.
	if err := godotenv.Load("config.env"); err == nil {
		log.Println("Loaded configuration from config.env")
	}

	return Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		AppPort:             getEnv("APP_PORT", "3001"),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", "*"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "registro"),
		DBPassword:          getEnv("DB_PASSWORD", "registro"),
		DBName:              getEnv("DB_NAME", "registro_accidentes"),
		DBMaxIdleConns:      getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:      getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "eventos"),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
	}
}

// IsProduction reports whether detailed error messages should be suppressed.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CloudinaryConfigured reports whether remote asset storage credentials are
// present. Storage mode is decided once at startup from this value.
func (c Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

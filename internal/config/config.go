package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string // Application port
	DBUser        string // Database user
	DBPassword    string // Database password
	DBHost        string // Database host
	DBPort        string // Database port
	DBName        string // Database name
	SessionSecret string // Secret key signing the session-token cookie
	RedisAddr     string // Redis server address
	RedisPass     string // Redis password
	RedisDB       int    // Redis database number
	UploadDir     string // Directory for uploaded campground images
	GeocoderURL   string // Base URL of the geocoding service
	IsProd        bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:       os.Getenv("APP_PORT"),          // Application port
		DBUser:        os.Getenv("DB_USER"),           // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:        os.Getenv("DB_HOST"),           // Database host
		DBPort:        os.Getenv("DB_PORT"),           // Database port
		DBName:        os.Getenv("DB_NAME"),           // Database name
		SessionSecret: os.Getenv("SESSION_SECRET"),    // Session cookie signing secret
		RedisAddr:     os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:       redisDB,                        // Redis database number
		UploadDir:     os.Getenv("UPLOAD_DIR"),        // Image upload directory
		GeocoderURL:   os.Getenv("GEOCODER_URL"),      // Geocoding service base URL
		IsProd:        os.Getenv("IS_PROD") == "true", // Is production environment
	}
	// Sensible defaults for local development
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.GeocoderURL == "" {
		cfg.GeocoderURL = "https://nominatim.openstreetmap.org/search"
	}
	return cfg
}

// DSN builds the MySQL Data Source Name from the loaded configuration
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Most values are read from the environment with simple defaults.
type Config struct {
	HTTPAddr    string
	FFprobePath string // Path to the ffprobe binary used for media probing
	UploadDir   string // Local scratch directory for uploads before they reach MinIO
	WatchDir    string // Watch folder for auto-imported media; empty disables the watcher

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Editor defaults applied to new projects.
	OutputWidth     int
	OutputHeight    int
	FrameRate       int
	MaxVideoTracks  int
	MaxAudioTracks  int
	MaxTextTracks   int

	LogLevel  string
	LogOutput string // File path for rotated logs; empty means console only
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	uploadBase := getEnv("UPLOAD_DIR", "uploads")

	return &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		UploadDir:   uploadBase,
		WatchDir:    getEnv("WATCH_DIR", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"), // Default to standard MySQL port
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "frameloom"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "frameloom"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		OutputWidth:    getEnvInt("OUTPUT_WIDTH", 1920),
		OutputHeight:   getEnvInt("OUTPUT_HEIGHT", 1080),
		FrameRate:      getEnvInt("FRAME_RATE", 30),
		MaxVideoTracks: getEnvInt("MAX_VIDEO_TRACKS", 8),
		MaxAudioTracks: getEnvInt("MAX_AUDIO_TRACKS", 8),
		MaxTextTracks:  getEnvInt("MAX_TEXT_TRACKS", 4),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogOutput: getEnv("LOG_OUTPUT", filepath.Join("logs", "frameloom.log")),
	}
}

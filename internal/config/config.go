package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 存储驱动
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr            string
	Port                  string
	GinMode               string
	StoreDriver           string
	DatabasePath          string
	MongoURI              string
	MongoDatabase         string
	UploadDir             string
	UploadURLPath         string
	JWTSecret             string
	TokenTTL              time.Duration
	CORSOrigins           []string
	LogLevel              string
	LogEncoding           string
	BookletAuthorFallback string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 当前目录存在 .env 时会先加载它，已有的环境变量不会被覆盖。
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	storeDriver := strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite))
	if storeDriver != StoreMongo {
		storeDriver = StoreSQLite
	}

	return AppConfig{
		ListenAddr:            listenAddr,
		Port:                  port,
		GinMode:               getEnv("GIN_MODE", "release"),
		StoreDriver:           storeDriver,
		DatabasePath:          getEnv("DATABASE_PATH", "ariane.db"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGO_DATABASE", "ariane"),
		UploadDir:             getEnv("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:         getEnv("UPLOAD_URL_PATH", "/static/uploads"),
		JWTSecret:             getEnv("JWT_SECRET", "ariane-dev-secret"),
		TokenTTL:              getDuration("TOKEN_TTL", 24*time.Hour),
		CORSOrigins:           splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogEncoding:           getEnv("LOG_ENCODING", "json"),
		BookletAuthorFallback: getEnv("BOOKLET_AUTHOR_FALLBACK", "Artist Unknown"),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string
	APIKey         string
	AdminUsername  string
	AdminPassword  string
	ReadTimeout    int
	WriteTimeout   int

	Cache  CacheConfig
	Qdrant QdrantConfig
	Upload UploadConfig
}

// CacheConfig Redisキャッシュの設定
type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// QdrantConfig 予測アーカイブ(Qdrant)の設定。URLが空なら無効
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// Enabled reports whether an archive endpoint is configured.
func (q QdrantConfig) Enabled() bool {
	return q.URL != ""
}

type UploadConfig struct {
	MaxBytes    int64
	PreviewRows int
}

var defaultOrigins = []string{
	"http://localhost:8081",
	"http://127.0.0.1:8081",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadDotEnv .envファイルがあれば読み込む（無くてもエラーにしない）
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", strings.Join(defaultOrigins, ","))
	v.SetDefault("API_KEY", "")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("QDRANT_URL", "")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("QDRANT_COLLECTION", "demand_forecasts")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("UPLOAD_PREVIEW_ROWS", 5)

	v.AutomaticEnv()

	return &Config{
		Port:           v.GetString("PORT"),
		Environment:    v.GetString("ENVIRONMENT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		APIKey:         v.GetString("API_KEY"),
		AdminUsername:  v.GetString("ADMIN_USERNAME"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
		WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Upload: UploadConfig{
			MaxBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
			PreviewRows: v.GetInt("UPLOAD_PREVIEW_ROWS"),
		},
	}
}

// splitList カンマ区切りの文字列を分割し、空要素を除く
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

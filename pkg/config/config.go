package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	MetricsPort             string
	JWTSecret               string

	KakaoScriptKey  string // Injected into page contexts for the client-side map
	KakaoRESTKey    string // Used server side by the geocoder
	GeocoderURL     string
	GeocoderTimeout time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string // Public prefix of stored images, empty means endpoint/bucket
	MediaBaseURL   string
	MaxUploadBytes int64
}

// Load reads the configuration from the environment, loading a .env file first when present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "placenote"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		KakaoScriptKey:          getEnv("KAKAO_SCRIPT_KEY", ""),
		KakaoRESTKey:            getEnv("KAKAO_REST_KEY", ""),
		GeocoderURL:             getEnv("GEOCODER_URL", ""),
		GeocoderTimeout:         getDuration("GEOCODER_TIMEOUT", 3*time.Second),
		MinioEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:             getEnv("MINIO_BUCKET", "post-images"),
		MinioUseSSL:             getEnv("MINIO_USE_SSL", "false") == "true",
		MinioPublicURL:          getEnv("MINIO_PUBLIC_URL", ""),
		MediaBaseURL:            getEnv("MEDIA_BASE_URL", "/media"),
		MaxUploadBytes:          getInt64("MAX_UPLOAD_MB", 10) << 20,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

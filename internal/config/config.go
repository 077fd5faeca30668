package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	APIUrl      string
	FrontendURL string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret               string
	JWTAccessTokenDuration  time.Duration
	JWTRefreshTokenDuration time.Duration
	JWTGalleryTokenDuration time.Duration

	// Studio bootstrap account
	StudioUsername string
	StudioPassword string
	StudioEmail    string

	// Stripe
	StripeSecretKey               string
	StripeWebhookSecret           string
	StripeSuccessURL              string
	StripeCancelURL               string
	StripePaymentMethods          []string
	StripeAutomaticPaymentMethods bool
	StripeCurrency                string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Media S3
	MediaS3Endpoint        string
	MediaS3Region          string
	MediaS3AccessKeyID     string
	MediaS3SecretAccessKey string
	MediaS3UsePathStyle    bool
	MediaImagesBucket      string

	// Local storage (fast-serving cache mirror of S3)
	LocalAssetsPath  string
	MediaSyncOnStart bool

	// Uploads
	UploadMaxImageSize int64
	UploadMaxBatch     int
	UploadConcurrency  int
	UploadMaxPerDay    int

	// Image variants
	ThumbMaxEdge           uint
	DisplayMaxEdge         uint
	VariantBackfillEnabled bool
	PresignedURLTTLMinutes int

	// Proofing sessions
	ProofingSessionTTL time.Duration
	CompareLimit       int

	// Orders
	PendingOrderCleanupEnabled bool
	PendingOrderMaxAge         time.Duration

	// Security
	BcryptCost        int
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		APIUrl:      getEnv("API_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "prooflab"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "prooflab_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "UTC"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "1h"),
		JWTRefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TOKEN_DURATION", "168h"),
		JWTGalleryTokenDuration: getEnvAsDuration("JWT_GALLERY_TOKEN_DURATION", "720h"),

		// Studio bootstrap account
		StudioUsername: getEnv("STUDIO_USERNAME", "studio"),
		StudioPassword: getEnv("STUDIO_PASSWORD", "studio123"),
		StudioEmail:    getEnv("STUDIO_EMAIL", "studio@prooflab.io"),

		// Stripe
		StripeSecretKey:               getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:           getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeSuccessURL:              getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		StripeCancelURL:               getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
		StripePaymentMethods:          getEnvAsSlice("STRIPE_PAYMENT_METHODS", []string{"card"}),
		StripeAutomaticPaymentMethods: getEnv("STRIPE_AUTOMATIC_PAYMENT_METHODS", "false") == "true",
		StripeCurrency:                getEnv("STRIPE_CURRENCY", "usd"),

		// SMTP
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@prooflab.io"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Prooflab"),

		// Media S3
		MediaS3Endpoint:        getEnv("MEDIA_S3_ENDPOINT", ""),
		MediaS3Region:          getEnv("MEDIA_S3_REGION", "us-east-1"),
		MediaS3AccessKeyID:     getEnv("MEDIA_S3_ACCESS_KEY_ID", ""),
		MediaS3SecretAccessKey: getEnv("MEDIA_S3_SECRET_ACCESS_KEY", ""),
		MediaS3UsePathStyle:    getEnv("MEDIA_S3_USE_PATH_STYLE", "true") == "true",
		MediaImagesBucket:      getEnv("MEDIA_IMAGES_BUCKET", "prooflab-images"),

		// Local storage
		LocalAssetsPath:  getEnv("LOCAL_ASSETS_PATH", "/data/assets"),
		MediaSyncOnStart: getEnv("MEDIA_SYNC_ON_START", "false") == "true",

		// Uploads
		UploadMaxImageSize: getEnvAsInt64("UPLOAD_MAX_IMAGE_SIZE", 50*1024*1024),
		UploadMaxBatch:     getEnvAsInt("UPLOAD_MAX_BATCH", 10),
		UploadConcurrency:  getEnvAsInt("UPLOAD_CONCURRENCY", 3),
		UploadMaxPerDay:    getEnvAsInt("UPLOAD_MAX_PER_DAY", 300),

		// Image variants
		ThumbMaxEdge:           uint(getEnvAsInt("THUMB_MAX_EDGE", 400)),
		DisplayMaxEdge:         uint(getEnvAsInt("DISPLAY_MAX_EDGE", 2048)),
		VariantBackfillEnabled: getEnv("VARIANT_BACKFILL_ENABLED", "true") == "true",
		PresignedURLTTLMinutes: getEnvAsInt("PRESIGNED_URL_TTL_MINUTES", 15),

		// Proofing sessions
		ProofingSessionTTL: getEnvAsDuration("PROOFING_SESSION_TTL", "72h"),
		CompareLimit:       getEnvAsInt("COMPARE_LIMIT", 6),

		// Orders
		PendingOrderCleanupEnabled: getEnv("PENDING_ORDER_CLEANUP_ENABLED", "true") == "true",
		PendingOrderMaxAge:         getEnvAsDuration("PENDING_ORDER_MAX_AGE", "30m"),

		// Security
		BcryptCost:        getEnvAsInt("BCRYPT_COST", 12),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

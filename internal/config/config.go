package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	MongoURI string
	MongoDB  string

	RedisHost     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUser     string
	ScyllaPassword string

	StripeSecretKey     string
	StripeWebhookSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionSecret   string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthCallbackBase  string
	FrontendURL        string

	ReturnWindow          time.Duration
	ShippingFee           float64
	FreeShippingThreshold float64
	UPIVPA                string
	UPIPayeeName          string

	CORSOrigins []string
}

// Load reads .env when present and builds the Config from the environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using process environment")
	} else {
		log.Println("✅ .env loaded")
	}

	return &Config{
		AppEnv:   getenv("APP_ENV", "prod"),
		Port:     getenv("PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "farmlyf"),

		RedisHost:     getenv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "farmlyf-media"),
		MinioUseSSL:    getbool("MINIO_USE_SSL", false),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		ScyllaHosts:    getlist("SCYLLA_HOSTS"),
		ScyllaKeyspace: getenv("SCYLLA_KEYSPACE", "farmlyf_audit"),
		ScyllaUser:     os.Getenv("SCYLLA_USER"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getint("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "noreply@farmlyf.in"),

		JWTSecret:       getenv("JWT_SECRET", "change-me"),
		AccessTokenTTL:  getduration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getduration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		SessionSecret:   getenv("SESSION_SECRET", "change-me-too"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthCallbackBase:  getenv("OAUTH_CALLBACK_BASE", "http://localhost:8080"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:5173"),

		ReturnWindow:          time.Duration(getint("RETURN_WINDOW_DAYS", 7)) * 24 * time.Hour,
		ShippingFee:           getfloat("SHIPPING_FEE", 49),
		FreeShippingThreshold: getfloat("FREE_SHIPPING_THRESHOLD", 499),
		UPIVPA:                os.Getenv("UPI_VPA"),
		UPIPayeeName:          getenv("UPI_PAYEE_NAME", "FarmLyf"),

		CORSOrigins: getlistDefault("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getfloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getbool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getlist(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getlistDefault(key string, def []string) []string {
	if l := getlist(key); len(l) > 0 {
		return l
	}
	return def
}

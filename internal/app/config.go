package app

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/situacio-backend/internal/db"
	"github.com/yungbote/situacio-backend/internal/observability"
	"github.com/yungbote/situacio-backend/internal/platform/envutil"
	"github.com/yungbote/situacio-backend/internal/platform/gcp"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Port        string
	LogMode     string
	Version     string
	CORSOrigins []string

	LLMProvider       string
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAIMaxRetries  int
	ExtractRatePerMin int

	SessionStore      string
	SessionTTL        time.Duration
	SessionSigningKey string
	RedisAddr         string
	RedisPassword     string
	RedisChannel      string

	DB db.Config

	ArchiveBucket string
	Document      gcp.DocumentConfig

	ChromeBin        string
	ChromeControlURL string
	ChromeNoSandbox  bool
	ChromeTimeout    time.Duration

	GoogleDisableADC bool

	Otel observability.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		CORSOrigins: splitList(envutil.String("CORS_ORIGINS", "")),

		LLMProvider:       strings.ToLower(envutil.String("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:      envutil.String("GEMINI_API_KEY", ""),
		GeminiModel:       envutil.String("GEMINI_MODEL", ""),
		OpenAIAPIKey:      envutil.String("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     envutil.String("OPENAI_BASE_URL", ""),
		OpenAIModel:       envutil.String("OPENAI_MODEL", ""),
		OpenAIMaxRetries:  envutil.Int("OPENAI_MAX_RETRIES", 2),
		ExtractRatePerMin: envutil.Int("EXTRACT_RATE_PER_MIN", 6),

		SessionStore:      strings.ToLower(envutil.String("SESSION_STORE", StoreMemory)),
		SessionTTL:        envutil.Minutes("SESSION_TTL_MINUTES", 12*time.Hour),
		SessionSigningKey: envutil.String("SESSION_SIGNING_KEY", ""),
		RedisAddr:         envutil.String("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     envutil.String("REDIS_PASSWORD", ""),
		RedisChannel:      envutil.String("REDIS_CHANNEL", "situacio:events"),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverSQLite),
			SQLitePath:       envutil.String("SQLITE_PATH", "situacio.db"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "situacio"),
		},

		ArchiveBucket: envutil.String("EXPORT_ARCHIVE_BUCKET", ""),
		Document: gcp.DocumentConfig{
			ProjectID:        envutil.String("DOCUMENTAI_PROJECT_ID", ""),
			Location:         envutil.String("DOCUMENTAI_LOCATION", "eu"),
			ProcessorID:      envutil.String("DOCUMENTAI_PROCESSOR_ID", ""),
			ProcessorVersion: envutil.String("DOCUMENTAI_PROCESSOR_VERSION", ""),
		},

		ChromeBin:        envutil.String("CHROME_BIN", ""),
		ChromeControlURL: envutil.String("CHROME_CONTROL_URL", ""),
		ChromeNoSandbox:  envutil.Bool("CHROME_NO_SANDBOX", false),
		ChromeTimeout:    time.Duration(envutil.Int("CHROME_TIMEOUT_SECONDS", 60)) * time.Second,

		GoogleDisableADC: envutil.Bool("GOOGLE_DISABLE_ADC", false),

		Otel: observability.Config{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "situacio"),
			Environment: envutil.String("OTEL_ENVIRONMENT", ""),
			SampleRatio: parseFloat(envutil.String("OTEL_SAMPLER_RATIO", ""), 0.1),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}
	cfg.Otel.Version = cfg.Version

	if cfg.SessionSigningKey == "" {
		cfg.SessionSigningKey = randomKey()
		log.Warn("SESSION_SIGNING_KEY not set; using an ephemeral key (tokens die with the process)")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(raw string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return f
}

func randomKey() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func envLogMode() string {
	return envutil.String("LOG_MODE", "development")
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string
	AppVersion string
	Port       string

	DatabaseURL string
	SslCertPath string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	JWTSecret string

	// Upload constraints.
	FileAllowedTypes []string
	FileMaxSize      int64 // bytes
	FileReadChunk    int   // bytes per streamed read/write

	// Chunking defaults, used when a process request omits them.
	DefaultChunkSize   int
	DefaultOverlapSize int

	// LLM provider selection and defaults.
	LLMBackend       string // "gemini" or "openai"
	GeminiAPIKey     string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	GenerationModel  string
	EmbeddingModel   string
	EmbeddingDim     int
	InputMaxChars    int
	GenerationMaxOut int
	GenerationTemp   float64
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		AppName:    getEnv("APP_NAME", "ragstore"),
		AppVersion: getEnv("APP_VERSION", "0.1.0"),
		Port:       getEnv("PORT", "8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "ragstore-assets"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		FileAllowedTypes: getEnvList("FILE_ALLOWED_TYPES", []string{"text/plain", "application/pdf"}),
		FileMaxSize:      int64(getEnvInt("FILE_MAX_SIZE_MB", 10)) << 20,
		FileReadChunk:    getEnvInt("FILE_DEFAULT_CHUNK_SIZE", 512000),

		DefaultChunkSize:   getEnvInt("DEFAULT_CHUNK_SIZE", 1000),
		DefaultOverlapSize: getEnvInt("DEFAULT_OVERLAP_SIZE", 200),

		LLMBackend:       getEnv("LLM_BACKEND", "gemini"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_API_URL", ""),
		GenerationModel:  getEnv("GENERATION_MODEL", "gemini-1.5-flash"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", 768),
		InputMaxChars:    getEnvInt("INPUT_DEFAULT_MAX_CHARACTERS", 1024),
		GenerationMaxOut: getEnvInt("GENERATION_DEFAULT_MAX_TOKENS", 1000),
		GenerationTemp:   getEnvFloat("GENERATION_DEFAULT_TEMPERATURE", 0.1),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}

// getEnvList reads a comma-separated list, trimming whitespace around items.
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	SessionStoreType string
	SessionFile      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisPrefix      string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	GoogleAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiTimeoutSeconds int

	PublicBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		SessionStoreType: normalizeSessionStore(getEnv("SESSION_STORE", "file")),
		SessionFile:      getEnv("SESSION_FILE", "./data/db.json"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPrefix:      getEnv("REDIS_PREFIX", "interview:session:"),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/resumes"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "models/gemini-1.5-flash"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeoutSeconds: getEnvInt("GEMINI_TIMEOUT_SECONDS", 120),

		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "file"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// loadEnvFiles loads simple KEY=VALUE pairs from the given files if they exist.
// Errors are ignored; real deployments set the environment directly.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, val, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			val = strings.Trim(strings.TrimSpace(val), `"`)
			if key != "" {
				os.Setenv(key, val)
			}
		}
		_ = f.Close()
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names shared with the python TestLink client so
// existing shells keep working.
const (
	EnvServerURL = "TESTLINK_API_PYTHON_SERVER_URL"
	EnvDevKey    = "TESTLINK_API_PYTHON_DEVKEY"
)

var (
	DefaultCustomFields = []string{"Auto Backlog", "Build No", "Defects", "Test Grouping", "UAT TC Priority", "UAT Test Case"}
	DefaultFields       = []string{"name", "summary", "preconditions", "testsuite_id", "importance", "version", "execution_type", "estimated_exec_duration", "full_tc_external_id", "steps"}
)

type Config struct {
	HTTPAddr      string
	DemoRateLimit int

	ServerURL      string        `validate:"required,url"`
	DevKey         string        `validate:"required"`
	Project        string        `validate:"required"`
	CustomFields   []string      `validate:"dive,required"`
	Fields         []string      `validate:"required,min=1,dive,required"`
	Output         string        `validate:"required"`
	RequestTimeout time.Duration `validate:"gte=0"`

	StorageMode      string `validate:"oneof=none local filesystem s3 aws localstack"`
	LocalStorageDir  string
	S3Bucket         string
	S3Endpoint       string
	S3Region         string
	AWSAccessKey     string
	AWSSecretKey     string
	S3ForcePathStyle bool

	RedisURL string
	LockTTL  time.Duration `validate:"gt=0"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
		slog.Warn("bad int env, using default", "key", key, "value", v)
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "true" || v == "1" {
			return true
		}
		if v == "false" || v == "0" {
			return false
		}
		slog.Warn("bad bool env, using default", "key", key, "value", v)
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
		slog.Warn("bad duration env, using default", "key", key, "value", v)
	}
	return def
}

// getList reads a comma separated list, trimming blanks around each entry.
func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), def...)
	}
	return SplitList(v)
}

// SplitList splits a comma separated value and drops empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envFiles are tried in order in the working directory and up to three
// parents; the first directory holding any of them wins.
var envFiles = []string{".env.local", ".env"}

func loadEnvFiles() {
	dir, err := os.Getwd()
	if err != nil {
		slog.Debug("failed to get current directory", "error", err)
		return
	}

	for range 4 {
		if loadEnvDir(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	slog.Debug("no .env files found, using system environment variables only")
}

func loadEnvDir(dir string) bool {
	loaded := false
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Debug("failed to load environment file", "path", path, "error", err)
			continue
		}
		slog.Debug("loaded environment file", "path", path)
		loaded = true
	}
	return loaded
}

func Load() Config {
	loadEnvFiles()
	return fromEnv()
}

func fromEnv() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", "localhost:8080"),
		DemoRateLimit:    mustInt("DEMO_RATE_LIMIT", 100),
		ServerURL:        getenv(EnvServerURL, ""),
		DevKey:           getenv(EnvDevKey, ""),
		Project:          getenv("TESTLINK_PROJECT", "My Project"),
		CustomFields:     getList("TESTLINK_CUSTOM_FIELDS", DefaultCustomFields),
		Fields:           getList("TESTLINK_TESTCASE_FIELDS", DefaultFields),
		Output:           getenv("EXPORT_OUTPUT", "results.csv"),
		RequestTimeout:   mustDuration("EXPORT_REQUEST_TIMEOUT", 0),
		StorageMode:      getenv("STORAGE_MODE", "none"),
		LocalStorageDir:  getenv("LOCAL_STORAGE_DIR", "./exports"),
		S3Bucket:         getenv("S3_BUCKET", "testlink-exports"),
		S3Endpoint:       getenv("S3_ENDPOINT", ""),
		S3Region:         getenv("S3_REGION", "us-east-1"),
		AWSAccessKey:     getenv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getenv("AWS_SECRET_ACCESS_KEY", ""),
		S3ForcePathStyle: getBool("S3_FORCE_PATH_STYLE", true),
		RedisURL:         getenv("REDIS_URL", ""),
		LockTTL:          mustDuration("EXPORT_LOCK_TTL", time.Hour),
	}
}

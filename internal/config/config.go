package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseName is fixed; only the connection URL is configurable.
const DatabaseName = "ecommerce"

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	HTTPAddr            string
	MongoURL            string
	MongoConnectTimeout time.Duration
	StoreDriver         string
	RedisAddr           string
	KafkaBrokers        []string
	ServiceName         string
	LogLevel            string
	LogFormat           string
	AuditGroup          string
	AuditWorkers        int
}

func Load() Config {
	return Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":8000"),
		MongoURL:            getenv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoConnectTimeout: getduration("MONGO_CONNECT_TIMEOUT", 5*time.Second),
		StoreDriver:         strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		KafkaBrokers:        splitCSV(getenv("KAFKA_BROKERS", "")),
		ServiceName:         getenv("SERVICE_NAME", "catalog-api"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		LogFormat:           getenv("LOG_FORMAT", "json"),
		AuditGroup:          getenv("AUDIT_GROUP", "catalog-audit"),
		AuditWorkers:        getint("AUDIT_WORKERS", 4),
	}
}

// EventsEnabled reports whether a Kafka broker list was configured.
func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

func (c Config) RedisEnabled() bool { return c.RedisAddr != "" }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

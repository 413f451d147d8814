package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// State store
	StateBackend  string
	StateFilePath string
	SQLiteDBPath  string

	// AMQP notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// AI summary
	GeminiAPIKey string
	GeminiModel  string

	// Catch-up worker
	CatchupInterval time.Duration

	// Number of recent transactions handed to the summary service
	SummaryTransactionLimit int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		StateBackend:  getEnv("STATE_BACKEND", "file"),
		StateFilePath: getEnv("STATE_FILE_PATH", "./data/coins.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/coins.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "coins"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "automation_runs"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		CatchupInterval: getEnvDuration("CATCHUP_INTERVAL", time.Hour),

		SummaryTransactionLimit: getEnvInt("SUMMARY_TRANSACTION_LIMIT", 20),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StateBackend {
	case "memory":
	case "file":
		if c.StateFilePath == "" {
			problems = append(problems, "state file path cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid state backend '%s': must be one of [memory file sqlite]", c.StateBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CatchupInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid catch-up interval %v: must be at least 1 minute", c.CatchupInterval))
	} else if c.CatchupInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid catch-up interval %v: must be at most 24 hours", c.CatchupInterval))
	}

	if c.SummaryTransactionLimit < 1 || c.SummaryTransactionLimit > 200 {
		problems = append(problems, fmt.Sprintf("invalid summary transaction limit %d: must be between 1 and 200", c.SummaryTransactionLimit))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

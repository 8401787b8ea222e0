package dsn

import (
	"fmt"
	"os"
)

// FromEnv builds a postgres DSN from DB_* environment variables.
// It returns an empty string when DB_HOST is not set.
func FromEnv() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	port := getenv("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	dbname := os.Getenv("DB_NAME")
	sslmode := getenv("DB_SSLMODE", "disable")
	tz := getenv("DB_TIMEZONE", "America/Toronto")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		host, port, user, pass, dbname, sslmode, tz)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

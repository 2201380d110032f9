package bot

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	TelegramDebug  bool
	LedgerBackend  string
	LedgerPath     string
	RedisURL       string
	RedisKey       string
	DatabaseURL    string
	AdminIDs       map[int64]bool
	ExemptAdmins   bool
	MinDuration    int
	AnnounceChatID int64
}

// LoadDotEnv copies variables from .env files into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("dotenv %s: %v", f, err)
		}
	}
}

func LoadConfig() *Config {
	c := &Config{}
	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.TelegramDebug = getenvBool("TELEGRAM_DEBUG", false)
	c.LedgerBackend = strings.ToLower(getenvOr("LEDGER_BACKEND", "file"))
	c.LedgerPath = getenvOr("LEDGER_PATH", "speakpoints.json")
	c.RedisURL = getenvOr("REDIS_URL", "redis://localhost:6379")
	c.RedisKey = getenvOr("REDIS_KEY", "speakpoints:ledger")
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.AdminIDs = parseIDs(os.Getenv("ADMIN_TELEGRAM_IDS"))
	c.ExemptAdmins = getenvBool("EXEMPT_ADMINS", false)
	c.MinDuration = getenvInt("MIN_DURATION_SECONDS", 20)
	c.AnnounceChatID, _ = strconv.ParseInt(strings.TrimSpace(os.Getenv("ANNOUNCE_CHAT_ID")), 10, 64)
	return c
}

func parseIDs(s string) map[int64]bool {
	out := make(map[int64]bool)
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	// support space or comma separated
	s = strings.ReplaceAll(s, ",", " ")
	parts := strings.Fields(s)
	for _, p := range parts {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			out[id] = true
		}
	}
	return out
}

func getenvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 0 {
		return def
	}
	return v
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DefaultOpenF1URL            = "https://api.openf1.org/v1"
	DefaultWebserverAddress     = ":8080"
	DefaultSettingsDB           = "./openf1-bot.db"
	DefaultNotificationInterval = time.Hour
)

type Config struct {
	TelegramToken        string
	OpenF1URL            string
	WebserverAddress     string
	SettingsDB           string
	NotificationInterval time.Duration
	MockAPI              bool
	// Debug logs the web routes at startup and every Telegram API exchange.
	Debug bool
}

// Load reads the configuration from the environment. Values from a .env file
// are loaded first when one exists; real environment variables win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, errors.Wrapf(err, "load %s", f)
		}
		log.Printf("Loaded environment from %s", f)
	}

	c := Config{
		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		OpenF1URL:            lookup("OPENF1_API_URL", DefaultOpenF1URL),
		WebserverAddress:     lookup("WEBSERVER_ADDRESS", DefaultWebserverAddress),
		SettingsDB:           lookup("SETTINGS_DB", DefaultSettingsDB),
		NotificationInterval: DefaultNotificationInterval,
	}

	if v, ok := os.LookupEnv("NOTIFICATION_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "invalid NOTIFICATION_INTERVAL")
		}
		if d <= 0 {
			return Config{}, errors.Errorf("invalid NOTIFICATION_INTERVAL: %s must be positive", v)
		}
		c.NotificationInterval = d
	}

	if v, ok := os.LookupEnv("MOCK_API"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "invalid MOCK_API")
		}
		c.MockAPI = b
	}

	if v, ok := os.LookupEnv("DEBUG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "invalid DEBUG")
		}
		c.Debug = b
	}

	return c, nil
}

func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

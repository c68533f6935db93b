package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSheets = "sheets"
	StoreMemory = "memory"
	StoreMongo  = "mongo"

	defaultTimezone = "Asia/Tokyo"
	devSecretKey    = "dev-secret-key-change-in-production"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	SecretKey string

	RowStore                     string
	SpreadsheetID                string
	SheetName                    string
	GoogleServiceAccountJSONPath string
	GoogleServiceAccountJSON     string
	StoreTimeout                 time.Duration

	MongoURI string
	MongoDB  string

	Timezone *time.Location

	CronAuthToken     string
	RemindWindowHours int

	LineChannelAccessToken string
	LineUserID             string

	RateLimitPerMinute int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SecretKey: getEnv("SECRET_KEY", ""),

		RowStore:                     strings.ToLower(getEnv("ROW_STORE", StoreSheets)),
		SpreadsheetID:                getEnv("SPREADSHEET_ID", ""),
		SheetName:                    getEnv("SHEET_NAME", "todos"),
		GoogleServiceAccountJSONPath: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON_PATH", ""),
		GoogleServiceAccountJSON:     getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		StoreTimeout:                 time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 15)) * time.Second,

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "sheetodo"),

		Timezone: loadLocation(getEnv("APP_TIMEZONE", defaultTimezone)),

		CronAuthToken:     getEnv("CRON_AUTH_TOKEN", ""),
		RemindWindowHours: getEnvInt("REMIND_WINDOW_HOURS", 24),

		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineUserID:             getEnv("LINE_USER_ID", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate reports configuration that would make the server unusable.
// In development a missing SECRET_KEY falls back to a fixed key.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("SECRET_KEY is required in production"))
		} else {
			c.SecretKey = devSecretKey
		}
	}

	switch c.RowStore {
	case StoreSheets:
		if c.SpreadsheetID == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required: use the part of the sheet URL between /d/ and /edit"))
		}
		if c.SheetName == "" {
			errs = append(errs, errors.New("SHEET_NAME must not be empty"))
		}
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when ROW_STORE=mongo"))
		}
	case StoreMemory:
	default:
		errs = append(errs, errors.New("ROW_STORE must be one of sheets, memory, mongo"))
	}

	if c.RemindWindowHours <= 0 {
		errs = append(errs, errors.New("REMIND_WINDOW_HOURS must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// loadLocation falls back to Asia/Tokyo when name is unknown.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	log.Printf("Unknown APP_TIMEZONE %q, using %s", name, defaultTimezone)
	loc, err = time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

package config

import (
	"os"
	"strings"
)

// Settings collects every externally configured value. Loaded once in
// main and passed down explicitly; no package keeps its own env reads.
type Settings struct {
	Port string

	// External services
	NominatimURL string
	ImageryURL   string
	LandCoverURL string
	OpenAIKey    string
	OpenAIModel  string

	// PostgreSQL
	PgHost     string
	PgPort     string
	PgDatabase string
	PgUser     string
	PgPassword string

	// MongoDB
	MongoURI      string
	MongoDatabase string
}

// Load reads settings from the environment with development fallbacks.
func Load() Settings {
	return Settings{
		Port: getEnv("PORT", "8008"),

		NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		ImageryURL:   getEnv("IMAGERY_SERVICE_URL", "http://localhost:9090"),
		LandCoverURL: getEnv("LANDCOVER_SERVICE_URL", getEnv("IMAGERY_SERVICE_URL", "http://localhost:9090")),
		OpenAIKey:    getEnv("OPENAI_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		PgHost:     getEnv("PG_HOST", "localhost"),
		PgPort:     getEnv("PG_PORT", "5432"),
		PgDatabase: getEnv("PG_DATABASE", "mapaction"),
		PgUser:     getEnv("PG_USER", "postgres"),
		PgPassword: getEnv("PG_PASSWORD", ""),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "mapaction_chat"),
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

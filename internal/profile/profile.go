package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the calendar stores its own data
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your calendar instance.
	InstanceURL string

	// AI configuration. Two competing providers feed the assistant; both
	// speak the OpenAI chat-completion dialect.
	AIProvider    string // CALENDAR_AI_PROVIDER (openai or gemini, default: openai)
	AIModel       string // CALENDAR_AI_MODEL
	OpenAIAPIKey  string // CALENDAR_OPENAI_API_KEY
	OpenAIBaseURL string // CALENDAR_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	GeminiAPIKey  string // CALENDAR_GEMINI_API_KEY
	GeminiBaseURL string // CALENDAR_GEMINI_BASE_URL (default: OpenAI-compatible Gemini endpoint)

	// Flight-data provider configuration
	AeroAPIKey     string // CALENDAR_AEROAPI_KEY
	AeroAPIBaseURL string // CALENDAR_AEROAPI_BASE_URL (default: https://aeroapi.flightaware.com/aeroapi)

	// Messaging-bot webhook configuration
	LineChannelSecret      string // CALENDAR_LINE_CHANNEL_SECRET
	LineChannelAccessToken string // CALENDAR_LINE_CHANNEL_ACCESS_TOKEN
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if at least one AI provider key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.OpenAIAPIKey != "" || p.GeminiAPIKey != ""
}

// IsFlightEnabled returns true if the flight-data provider is configured.
func (p *Profile) IsFlightEnabled() bool {
	return p.AeroAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from CALENDAR_* environment variables.
func (p *Profile) FromEnv() {
	p.AIProvider = getEnvOrDefault("CALENDAR_AI_PROVIDER", "openai")
	p.AIModel = os.Getenv("CALENDAR_AI_MODEL")
	p.OpenAIAPIKey = os.Getenv("CALENDAR_OPENAI_API_KEY")
	p.OpenAIBaseURL = getEnvOrDefault("CALENDAR_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.GeminiAPIKey = os.Getenv("CALENDAR_GEMINI_API_KEY")
	p.GeminiBaseURL = getEnvOrDefault("CALENDAR_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai")

	p.AeroAPIKey = os.Getenv("CALENDAR_AEROAPI_KEY")
	p.AeroAPIBaseURL = getEnvOrDefault("CALENDAR_AEROAPI_BASE_URL", "https://aeroapi.flightaware.com/aeroapi")

	p.LineChannelSecret = os.Getenv("CALENDAR_LINE_CHANNEL_SECRET")
	p.LineChannelAccessToken = os.Getenv("CALENDAR_LINE_CHANNEL_ACCESS_TOKEN")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "calendar-app")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/calendar-app"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("calendar_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}

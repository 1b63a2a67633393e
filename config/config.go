package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider selections for the pluggable NLU and text-generation
// boundaries.
const (
	NLURules  = "rules"
	NLUGemini = "gemini"

	RendererTemplate = "template"
	RendererGemini   = "gemini"
)

// Config holds all server configuration
type Config struct {
	Port           int
	WebsocketPort  int    // Port for the websocket server (used when ServerType is "both")
	ServerType     string // "http", "websocket", or "both"
	RedisURL       string
	RedisPassword  string
	MaxSessions    int
	SessionTimeout time.Duration
	MaxViolations  int // filter rejections before the tone escalates
	GeminiAPIKey   string
	NLUProvider    string // "rules" or "gemini"
	Renderer       string // "template" or "gemini"
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:           8080,
		WebsocketPort:  8081,
		ServerType:     "http",
		RedisURL:       "localhost:6379",
		RedisPassword:  "",
		MaxSessions:    100,
		SessionTimeout: 30 * time.Minute,
		MaxViolations:  3,
		NLUProvider:    NLURules,
		Renderer:       RendererTemplate,
		AllowedOrigins: []string{"*"},
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: WEBSOCKET_PORT (used when SERVER_TYPE is "both")
	if wsPort := os.Getenv("WEBSOCKET_PORT"); wsPort != "" {
		p, err := strconv.Atoi(wsPort)
		if err != nil {
			return nil, fmt.Errorf("invalid WEBSOCKET_PORT: %w", err)
		}
		config.WebsocketPort = p
	}

	// Optional: SERVER_TYPE ("http", "websocket", or "both")
	if serverType := os.Getenv("SERVER_TYPE"); serverType != "" {
		switch serverType {
		case "http", "websocket", "both":
			config.ServerType = serverType
		default:
			return nil, fmt.Errorf("invalid SERVER_TYPE: must be 'http', 'websocket', or 'both'")
		}
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: MAX_VIOLATIONS
	if maxViolations := os.Getenv("MAX_VIOLATIONS"); maxViolations != "" {
		v, err := strconv.Atoi(maxViolations)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_VIOLATIONS: %w", err)
		}
		config.MaxViolations = v
	}

	// Optional: NLU_PROVIDER ("rules" or "gemini")
	if provider := os.Getenv("NLU_PROVIDER"); provider != "" {
		switch provider {
		case NLURules, NLUGemini:
			config.NLUProvider = provider
		default:
			return nil, fmt.Errorf("invalid NLU_PROVIDER: must be 'rules' or 'gemini'")
		}
	}

	// Optional: RENDERER ("template" or "gemini")
	if renderer := os.Getenv("RENDERER"); renderer != "" {
		switch renderer {
		case RendererTemplate, RendererGemini:
			config.Renderer = renderer
		default:
			return nil, fmt.Errorf("invalid RENDERER: must be 'template' or 'gemini'")
		}
	}

	// GEMINI_API_KEY: required only when a gemini-backed provider is selected
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if config.GeminiAPIKey == "" && (config.NLUProvider == NLUGemini || config.Renderer == RendererGemini) {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for gemini providers")
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	return config, nil
}

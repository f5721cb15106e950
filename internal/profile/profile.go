package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where curiocodex stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your curiocodex instance.
	InstanceURL string

	// AI Configuration
	AIEnabled        bool   // CURIOCODEX_AI_ENABLED
	AIBaseURL        string // CURIOCODEX_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey         string // CURIOCODEX_AI_API_KEY
	AIEmbeddingModel string // CURIOCODEX_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIChatModel      string // CURIOCODEX_AI_CHAT_MODEL (default: gpt-4o-mini)

	// Vector Index Configuration
	// VectorIndex selects the nearest-neighbor backend: "memory", "pgvector",
	// or "" to disable similarity/recommendation features entirely.
	VectorIndex string // CURIOCODEX_VECTOR_INDEX

	// Session Store Configuration
	SessionRedisAddr     string        // CURIOCODEX_SESSION_REDIS_ADDR (empty: in-memory sessions)
	SessionRedisPassword string        // CURIOCODEX_SESSION_REDIS_PASSWORD
	SessionTTL           time.Duration // CURIOCODEX_SESSION_TTL_HOURS (default: 168h = 7 days)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI enrichment is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from CURIOCODEX_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("CURIOCODEX_AI_ENABLED") == "true"
	p.AIBaseURL = getEnvOrDefault("CURIOCODEX_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("CURIOCODEX_AI_API_KEY")
	p.AIEmbeddingModel = getEnvOrDefault("CURIOCODEX_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AIChatModel = getEnvOrDefault("CURIOCODEX_AI_CHAT_MODEL", "gpt-4o-mini")

	p.VectorIndex = os.Getenv("CURIOCODEX_VECTOR_INDEX")

	p.SessionRedisAddr = os.Getenv("CURIOCODEX_SESSION_REDIS_ADDR")
	p.SessionRedisPassword = os.Getenv("CURIOCODEX_SESSION_REDIS_PASSWORD")
	p.SessionTTL = 168 * time.Hour
	if v := os.Getenv("CURIOCODEX_SESSION_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			p.SessionTTL = time.Duration(hours) * time.Hour
		}
	}
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
		p.Data = "/var/opt/curiocodex"
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("curiocodex_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	switch p.VectorIndex {
	case "", "memory", "pgvector":
	default:
		return errors.Errorf("unknown vector index backend %q: only 'memory' and 'pgvector' are supported", p.VectorIndex)
	}
	if p.VectorIndex == "pgvector" && p.Driver != "postgres" {
		return errors.New("pgvector index requires the postgres driver")
	}

	if p.SessionTTL == 0 {
		p.SessionTTL = 168 * time.Hour
	}

	return nil
}

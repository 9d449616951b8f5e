package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/profile"
	"github.com/jonathan/resume-tailor/internal/store"
)

// defaultStateFile is used when neither RESUME_STATE_FILE nor DATABASE_URL
// is configured.
const defaultStateFile = "resume_state.json"

// loadConfig merges the optional JSON config file with environment values.
// Env values win, matching how flags later win over both.
func loadConfig(path string) (config.Config, error) {
	cfg := config.FromEnv()
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore selects the persistence backend: PostgreSQL when DATABASE_URL is
// set, a local JSON file otherwise. The returned closer releases the
// database pool and is a no-op for the file backend.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPG(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st, err := store.Open(pg)
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		return st, pg.Close, nil
	}

	path := cfg.StateFile
	if path == "" {
		path = defaultStateFile
	}
	st, err := store.Open(store.NewFileStore(path))
	if err != nil {
		return nil, nil, err
	}
	return st, func() {}, nil
}

// newGenClient picks the generation backend. An external service URL takes
// precedence over the direct Gemini client.
func newGenClient(ctx context.Context, cfg config.Config) (genclient.Client, error) {
	if cfg.GeneratorBaseURL != "" {
		return genclient.NewHTTPClient(cfg.GeneratorBaseURL), nil
	}
	if cfg.APIKey != "" {
		return genclient.NewGeminiClient(ctx, cfg.APIKey, "")
	}
	return nil, fmt.Errorf("either GENERATOR_BASE_URL or GEMINI_API_KEY is required")
}

func newProfileSource(cfg config.Config) profile.Source {
	return profile.NewHTTPSource(cfg.ProfileBaseURL, os.Getenv("PROFILE_API_TOKEN"))
}

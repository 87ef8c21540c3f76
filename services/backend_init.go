package services

import (
	"fmt"
	"time"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/db"
	"kjsb_flow_app_go/services/backend"

	"go.uber.org/zap"
)

// Backend is the global data store used by handlers
var Backend backend.Store

// InitializeBackend selects the store named by BACKEND. The local backend
// opens (and migrates) the SQLite or Turso database through package db.
func InitializeBackend(cfg *config.Config) error {
	log := zap.L().Named("backend")

	switch cfg.Backend {
	case config.BackendLocal:
		if db.DB == nil {
			err := db.Initialize(db.Options{
				Path:        cfg.DBPath,
				TursoURL:    cfg.TursoDatabaseURL,
				TursoToken:  cfg.TursoAuthToken,
				Environment: cfg.Environment,
			})
			if err != nil {
				return err
			}
		}
		local := backend.NewLocal(db.DB, cfg.KodePrefix, log)
		if err := local.Migrate(); err != nil {
			return err
		}
		Backend = local
		log.Info("backend ready", zap.String("kind", "local"))
	case config.BackendPostgREST:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for the postgrest backend")
		}
		timeout := time.Duration(cfg.BackendTimeoutSeconds) * time.Second
		Backend = backend.NewPostgREST(cfg.SupabaseURL, cfg.SupabaseAnonKey, timeout, log)
		log.Info("backend ready", zap.String("kind", "postgrest"), zap.String("url", cfg.SupabaseURL))
	default:
		return fmt.Errorf("unknown BACKEND %q", cfg.Backend)
	}
	return nil
}

package repository

import (
	"time"

	"github.com/deppfellow/bridge-api/internal/schema"
	"github.com/deppfellow/bridge-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Bridge *BridgeRepository
}

// NewRepositories wires repositories to the shared pool and config on s.
func NewRepositories(s *server.Server) *Repositories {
	dbCfg := s.Config.Database

	return &Repositories{
		Bridge: NewBridgeRepository(s.DB.Pool, schema.Default(), Options{
			Schema:             dbCfg.Schema,
			Table:              dbCfg.Table,
			QueryTimeout:       time.Duration(dbCfg.QueryTimeout) * time.Second,
			SlowQueryThreshold: s.Config.Observability.Logging.SlowQueryThreshold,
			Logger:             s.Logger,
		}),
	}
}

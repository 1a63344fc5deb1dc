package order

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
)

// Module provides the order repository to Fx.
var Module = fx.Provide(NewRepository)

// NewRepository selects the store implementation from configuration.
func NewRepository(cfg config.Config, conns *database.Connections, logger *zap.Logger) (Repository, error) {
	switch cfg.Storage.Driver {
	case "file":
		return NewFileStore(cfg.Storage, logger)
	case "sql":
		return NewSQLStore(conns, cfg.Storage), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder loads example pedidos for local/dev setups. It goes through the
// repository so it works for both the flat-file and the sql driver.
type Seeder struct {
	repo   repo.Repository
	logger *zap.Logger
}

// New constructs a Seeder backed by the configured order store.
func New(r repo.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{repo: r, logger: logger}
}

// Orders seeds example orders, skipping ids that already exist.
func (s *Seeder) Orders(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Order{
		{
			ID:        "0001",
			Company:   "Acme Distribuidora",
			Product:   "Caixas de papelão",
			Quantity:  50,
			UnitValue: decimal.NewFromFloat(4.90),
			OrderedBy: "Ana",
			Status:    entity.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "0002",
			Company:   "Mercantil Sul",
			Product:   "Etiquetas térmicas",
			Quantity:  200,
			UnitValue: decimal.NewFromFloat(0.35),
			OrderedBy: "Carlos",
			Status:    entity.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	seeded := 0
	for _, sample := range samples {
		order := sample
		err := s.repo.Insert(ctx, &order)
		if errors.Is(err, repo.ErrDuplicate) {
			continue
		}
		if err != nil {
			return err
		}
		seeded++
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", seeded))
	}
	return nil
}

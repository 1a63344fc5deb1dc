package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrDuplicate is returned when an intake reuses an existing order id.
var ErrDuplicate = errors.New("order id already exists")

// ErrStorageUnavailable wraps failures to read or rewrite the backing
// store. A missing flat file self-heals; a corrupt one surfaces this.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Filter narrows reads of the ledger. Zero values match everything.
type Filter struct {
	Company string
	Status  entity.Status
}

// Match reports whether the order satisfies the filter.
func (f Filter) Match(o *entity.Order) bool {
	if f.Company != "" && o.Company != f.Company {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}

// Repository is the ledger contract shared by the flat-file and
// relational stores. Implementations persist the full table after every
// mutation; there is no batching or async flush.
type Repository interface {
	// List returns orders matching the filter in insertion order.
	List(ctx context.Context, f Filter) ([]entity.Order, error)
	// Get fetches a single order by its business key.
	Get(ctx context.Context, id string) (*entity.Order, error)
	// Insert appends a new order. Fails with ErrDuplicate when the id is
	// already present; no partial write occurs.
	Insert(ctx context.Context, o *entity.Order) error
	// UpdateReceipt locates an order by id and applies the receipt fields
	// in place. Fails with ErrNotFound without mutating anything.
	UpdateReceipt(ctx context.Context, id string, r entity.Receipt, now time.Time) (*entity.Order, error)
	// NextID mints the next sequential zero-padded order id.
	NextID(ctx context.Context) (string, error)
}

// nextSequentialID derives the next zero-padded id from the numeric ids
// already in use. Non-numeric ids are ignored.
func nextSequentialID(ids []string, padding int) string {
	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%0*d", padding, max+1)
}

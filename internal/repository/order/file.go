package order

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var fileTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/order/file")

// FileStore keeps the full ledger in memory, mirrored to a CSV flat file.
// Every mutation rewrites the whole file; a failed rewrite leaves the
// in-memory table untouched and is surfaced to the caller. The mutex
// serializes mutations inside this process; concurrent processes writing
// the same file race last-writer-wins, which the store does not guard
// against.
type FileStore struct {
	path    string
	padding int
	logger  *zap.Logger

	mu    sync.RWMutex
	table []*entity.Order
}

// NewFileStore loads the ledger from path, creating an empty file with the
// header row when none exists. A file that exists but cannot be parsed
// fails with ErrStorageUnavailable rather than silently discarding data.
func NewFileStore(cfg config.Storage, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:    cfg.FilePath,
		padding: cfg.IDPadding,
		logger:  logger,
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.table = nil
		if err := s.writeFile(nil); err != nil {
			return err
		}
		if s.logger != nil {
			s.logger.Info("created empty ledger file", zap.String("path", s.path))
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, s.path, err)
	}

	var table []*entity.Order
	if len(data) == 0 {
		// A truncated file is recoverable; rewrite the header row.
		if err := s.writeFile(nil); err != nil {
			return err
		}
	} else if err := gocsv.UnmarshalBytes(data, &table); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrStorageUnavailable, s.path, err)
	}
	s.table = table

	if s.logger != nil {
		s.logger.Info("ledger loaded", zap.String("path", s.path), zap.Int("orders", len(table)))
	}
	return nil
}

// writeFile serializes the given table and overwrites the flat file
// wholesale. No write-ahead log, no atomic rename; crash-during-write is
// an accepted limitation of the format.
func (s *FileStore) writeFile(table []*entity.Order) error {
	if table == nil {
		table = []*entity.Order{}
	}
	data, err := gocsv.MarshalBytes(&table)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageUnavailable, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return nil
}

// List returns orders matching the filter in insertion order.
func (s *FileStore) List(ctx context.Context, f Filter) ([]entity.Order, error) {
	_, span := fileTracer.Start(ctx, "OrderFileStore.List")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Order, 0, len(s.table))
	for _, o := range s.table {
		if f.Match(o) {
			out = append(out, *o)
		}
	}
	return out, nil
}

// Get fetches a single order by business key.
func (s *FileStore) Get(ctx context.Context, id string) (*entity.Order, error) {
	_, span := fileTracer.Start(ctx, "OrderFileStore.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.table {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	span.SetStatus(codes.Error, "not found")
	return nil, ErrNotFound
}

// Insert appends a new order and rewrites the file. The in-memory table
// only picks up the row once the rewrite succeeded.
func (s *FileStore) Insert(ctx context.Context, o *entity.Order) error {
	_, span := fileTracer.Start(ctx, "OrderFileStore.Insert", trace.WithAttributes(attribute.String("order.id", o.ID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.table {
		if existing.ID == o.ID {
			span.SetStatus(codes.Error, "duplicate id")
			return ErrDuplicate
		}
	}

	copied := *o
	next := append(append([]*entity.Order{}, s.table...), &copied)
	if err := s.writeFile(next); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return err
	}
	s.table = next
	return nil
}

// UpdateReceipt mutates the first row matching id. Duplicate ids cannot
// arise through Insert; if a hand-edited file contains them anyway, only
// the first match is touched.
func (s *FileStore) UpdateReceipt(ctx context.Context, id string, r entity.Receipt, now time.Time) (*entity.Order, error) {
	_, span := fileTracer.Start(ctx, "OrderFileStore.UpdateReceipt", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, o := range s.table {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}

	updated := *s.table[idx]
	updated.ApplyReceipt(r, now)

	next := append([]*entity.Order{}, s.table...)
	next[idx] = &updated
	if err := s.writeFile(next); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, err
	}
	s.table = next

	copied := updated
	return &copied, nil
}

// NextID mints the next zero-padded sequential id.
func (s *FileStore) NextID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.table))
	for _, o := range s.table {
		ids = append(ids, o.ID)
	}
	return nextSequentialID(ids, s.padding), nil
}

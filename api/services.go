package api

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"vitastore.GO/core/cache"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	"vitastore.GO/service/ledger"
	"vitastore.GO/service/notify"
	"vitastore.GO/service/search"
	"vitastore.GO/service/summary"
)

// Services bundles what route modules need. Search is nil when no
// Elasticsearch host is configured.
type Services struct {
	DB      *gorm.DB
	Ledger  *ledger.Engine
	Summary *summary.Projector
	Mail    notify.Transport
	Search  *search.Index
}

// NewServices wires the ledger engine and projector over db.
func NewServices(db *gorm.DB, d notify.Dispatcher, t notify.Transport, store cache.Store, ttl time.Duration) *Services {
	if t == nil {
		t = notify.NopTransport{}
	}
	return &Services{
		DB:      db,
		Ledger:  ledger.NewEngine(db, d),
		Summary: summary.NewProjector(db, store, ttl),
		Mail:    t,
	}
}

// Changed drops cached projections and refreshes the search documents of
// the touched items. Search failures are logged only.
func (s *Services) Changed(ctx context.Context, items ...inventoryEntity.Item) {
	s.Summary.Invalidate(ctx)
	if s.Search == nil {
		return
	}
	for i := range items {
		if err := s.Search.Put(ctx, &items[i]); err != nil {
			log.Printf("search index item %d: %v", items[i].ID, err)
		}
	}
}

// Removed is Changed for a deleted item.
func (s *Services) Removed(ctx context.Context, id uint) {
	s.Summary.Invalidate(ctx)
	if s.Search == nil {
		return
	}
	if err := s.Search.Remove(ctx, id); err != nil {
		log.Printf("search remove item %d: %v", id, err)
	}
}

package summary

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"vitastore.GO/core/cache"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

const (
	recentLimit   = 10
	lowStockLimit = 5
	topLimit      = 7

	// CacheTag groups every cached projection; Invalidate drops them all.
	CacheTag   = "inventory"
	summaryKey = "dashboard:summary"
	// generationKey is untagged so it outlives DeleteByTag.
	generationKey = "dashboard:generation"
)

var generationSeq atomic.Uint64

// Summary is the dashboard rollup.
type Summary struct {
	TotalItems         int                               `json:"totalItems"`
	LowStock           int                               `json:"lowStock"`
	Categories         int                               `json:"categories"`
	TotalValue         float64                           `json:"totalValue"`
	LowStockItems      []inventoryEntity.Item            `json:"lowStockItems"`
	TopItems           []inventoryEntity.Item            `json:"topItems"`
	HealthPercent      int                               `json:"healthPercent"`
	RecentTransactions []inventoryEntity.TransactionView `json:"recentTransactions"`
}

// Projector computes read-only views over the catalog and ledger. Results
// may be cached in store until the next Invalidate.
type Projector struct {
	items *inventoryRepo.ItemRepository
	txs   *inventoryRepo.TransactionRepository
	store cache.Store
	ttl   time.Duration
}

// NewProjector builds a projector; a nil store disables caching.
func NewProjector(db *gorm.DB, store cache.Store, ttl time.Duration) *Projector {
	return &Projector{
		items: inventoryRepo.NewItemRepository(db),
		txs:   inventoryRepo.NewTransactionRepository(db),
		store: store,
		ttl:   ttl,
	}
}

// Summarize reads all items and the most recent transactions concurrently
// and folds them into a Summary.
//
// The cache key embeds the generation read before loading, so a snapshot
// taken before a concurrent Invalidate is stored under a key nobody reads.
func (p *Projector) Summarize(ctx context.Context) (*Summary, error) {
	key := p.key(ctx)
	if s, ok := p.cached(ctx, key); ok {
		return s, nil
	}

	var items []inventoryEntity.Item
	var recent []inventoryEntity.TransactionView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = p.items.List(gctx, inventoryRepo.ItemFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = p.txs.List(gctx, inventoryRepo.TransactionFilter{Limit: recentLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := Compute(items, recent)
	p.remember(ctx, key, s)
	return s, nil
}

// Compute is the pure fold behind Summarize.
func Compute(items []inventoryEntity.Item, recent []inventoryEntity.TransactionView) *Summary {
	s := &Summary{
		TotalItems:         len(items),
		HealthPercent:      100,
		LowStockItems:      []inventoryEntity.Item{},
		TopItems:           []inventoryEntity.Item{},
		RecentTransactions: recent,
	}
	if s.RecentTransactions == nil {
		s.RecentTransactions = []inventoryEntity.TransactionView{}
	}

	categories := map[string]struct{}{}
	healthy := 0
	var low []inventoryEntity.Item
	for _, it := range items {
		if it.Category != "" {
			categories[it.Category] = struct{}{}
		}
		s.TotalValue += float64(it.Quantity) * it.Price
		if it.IsLowStock() {
			low = append(low, it)
		} else {
			healthy++
		}
	}
	s.LowStock = len(low)
	s.Categories = len(categories)

	sort.SliceStable(low, func(i, j int) bool {
		return stockRatio(low[i]) < stockRatio(low[j])
	})
	s.LowStockItems = append(s.LowStockItems, head(low, lowStockLimit)...)

	top := append([]inventoryEntity.Item(nil), items...)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Quantity > top[j].Quantity
	})
	s.TopItems = append(s.TopItems, head(top, topLimit)...)

	if len(items) > 0 {
		s.HealthPercent = int(math.Round(float64(healthy) / float64(len(items)) * 100))
	}
	return s
}

func stockRatio(it inventoryEntity.Item) float64 {
	floor := it.MinStock
	if floor == 0 {
		floor = 1
	}
	return float64(it.Quantity) / float64(floor)
}

func head(items []inventoryEntity.Item, n int) []inventoryEntity.Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// key returns the summary cache key for the current generation.
func (p *Projector) key(ctx context.Context) string {
	if p.store == nil {
		return ""
	}
	gen, ok, err := p.store.Get(ctx, generationKey)
	if err != nil {
		log.Printf("summary cache generation: %v", err)
	}
	if !ok || err != nil {
		return summaryKey + ":0"
	}
	return summaryKey + ":" + string(gen)
}

func (p *Projector) cached(ctx context.Context, key string) (*Summary, bool) {
	if p.store == nil {
		return nil, false
	}
	b, ok, err := p.store.Get(ctx, key)
	if err != nil {
		log.Printf("summary cache read: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var s Summary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (p *Projector) remember(ctx context.Context, key string, s *Summary) {
	if p.store == nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := p.store.Set(ctx, key, b, p.ttl, CacheTag); err != nil {
		log.Printf("summary cache write: %v", err)
	}
}

// Invalidate moves to a new generation and drops cached projections. Call
// after any catalog or ledger write.
func (p *Projector) Invalidate(ctx context.Context) {
	if p.store == nil {
		return
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 36) + "." + strconv.FormatUint(generationSeq.Add(1), 36)
	if err := p.store.Set(ctx, generationKey, []byte(gen), 0); err != nil {
		log.Printf("summary cache generation: %v", err)
	}
	if err := p.store.DeleteByTag(ctx, CacheTag); err != nil {
		log.Printf("summary cache invalidate: %v", err)
	}
}

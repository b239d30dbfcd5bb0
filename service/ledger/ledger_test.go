package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/notify"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.StockOutEvent
}

func (r *recorder) Notify(ev notify.StockOutEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []notify.StockOutEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.StockOutEvent(nil), r.events...)
}

type fixture struct {
	db     *gorm.DB
	engine *Engine
	items  *inventoryRepo.ItemRepository
	txs    *inventoryRepo.TransactionRepository
	sent   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA busy_timeout=5000")
	// One connection serializes the concurrent tests the way a single
	// sqlite writer would anyway.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := inventoryRepo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	rec := &recorder{}
	return &fixture{
		db:     db,
		engine: NewEngine(db, rec),
		items:  inventoryRepo.NewItemRepository(db),
		txs:    inventoryRepo.NewTransactionRepository(db),
		sent:   rec,
	}
}

func (f *fixture) item(t *testing.T, name string, qty, min int) *inventoryEntity.Item {
	t.Helper()
	it := inventoryEntity.Item{Name: name, Quantity: qty, MinStock: min, SKU: name[:1] + "-1"}
	if err := f.items.Create(context.Background(), &it); err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return &it
}

func (f *fixture) quantity(t *testing.T, id uint) int {
	t.Helper()
	it, err := f.items.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%d): %v", id, err)
	}
	return it.Quantity
}

func (f *fixture) rows(t *testing.T, id uint) []inventoryEntity.TransactionView {
	t.Helper()
	rows, err := f.txs.List(context.Background(), inventoryRepo.TransactionFilter{ItemID: id})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return rows
}

func TestStockOut_InsufficientLeavesQuantity(t *testing.T) {
	f := newFixture(t)
	vc := f.item(t, "Vitamin C 500mg", 10, 5)

	_, err := f.engine.StockOut(context.Background(), StockOutRequest{ItemID: vc.ID, Quantity: 12, Shop: "CBD"})
	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if ise.Available != 10 {
		t.Errorf("Available = %d, want 10", ise.Available)
	}
	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("errors.Is(err, ErrInsufficientStock) = false")
	}
	if err.Error() != "Insufficient stock for Vitamin C 500mg. Available: 10" {
		t.Errorf("message = %q", err.Error())
	}
	if got := f.quantity(t, vc.ID); got != 10 {
		t.Errorf("quantity = %d, want 10", got)
	}
	if n := len(f.rows(t, vc.ID)); n != 0 {
		t.Errorf("transactions = %d, want 0", n)
	}
	if n := len(f.sent.all()); n != 0 {
		t.Errorf("notifications = %d, want 0", n)
	}
}

func TestStockOut_RecordsAndNotifies(t *testing.T) {
	f := newFixture(t)
	vc := f.item(t, "Vitamin C 500mg", 10, 5)

	mv, err := f.engine.StockOut(context.Background(), StockOutRequest{ItemID: vc.ID, Quantity: 4, Shop: "CBD", Notes: "weekly"})
	if err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	if mv.Item.Quantity != 6 {
		t.Errorf("returned quantity = %d, want 6", mv.Item.Quantity)
	}
	if got := f.quantity(t, vc.ID); got != 6 {
		t.Errorf("quantity = %d, want 6", got)
	}
	rows := f.rows(t, vc.ID)
	if len(rows) != 1 {
		t.Fatalf("transactions = %d, want 1", len(rows))
	}
	if rows[0].Type != inventoryEntity.TypeOut || rows[0].Quantity != 4 || rows[0].Shop != "CBD" {
		t.Errorf("row = %+v, want OUT 4 CBD", rows[0].Transaction)
	}

	events := f.sent.all()
	if len(events) != 1 {
		t.Fatalf("notifications = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Shop != "CBD" || len(ev.Lines) != 1 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Lines[0].ItemName != "Vitamin C 500mg" || ev.Lines[0].Quantity != 4 || ev.Lines[0].Notes != "weekly" {
		t.Errorf("line = %+v", ev.Lines[0])
	}
}

func TestStockOut_Validation(t *testing.T) {
	f := newFixture(t)
	vc := f.item(t, "Zinc", 10, 0)
	ctx := context.Background()

	cases := []struct {
		name string
		req  StockOutRequest
		want error
	}{
		{"zero quantity", StockOutRequest{ItemID: vc.ID, Quantity: 0, Shop: "CBD"}, ErrInvalidArgument},
		{"negative quantity", StockOutRequest{ItemID: vc.ID, Quantity: -2, Shop: "CBD"}, ErrInvalidArgument},
		{"no shop", StockOutRequest{ItemID: vc.ID, Quantity: 1, Shop: "  "}, ErrInvalidArgument},
		{"missing item", StockOutRequest{ItemID: 999, Quantity: 1, Shop: "CBD"}, ErrNotFound},
	}
	for _, c := range cases {
		if _, err := f.engine.StockOut(ctx, c.req); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
	if got := f.quantity(t, vc.ID); got != 10 {
		t.Errorf("quantity = %d, want 10", got)
	}
}

func TestStockOut_ExactQuantityEmptiesItem(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "Iron", 3, 1)
	if _, err := f.engine.StockOut(context.Background(), StockOutRequest{ItemID: it.ID, Quantity: 3, Shop: "CBD"}); err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	if got := f.quantity(t, it.ID); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}

func TestStockIn(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "Magnesium", 2, 5)

	mv, err := f.engine.StockIn(context.Background(), StockInRequest{ItemID: it.ID, Quantity: 8, Notes: "supplier"})
	if err != nil {
		t.Fatalf("StockIn: %v", err)
	}
	if mv.Item.Quantity != 10 || mv.Transaction.Type != inventoryEntity.TypeIn {
		t.Errorf("movement = %+v", mv)
	}
	if mv.Transaction.Shop != "" {
		t.Errorf("IN row shop = %q, want empty", mv.Transaction.Shop)
	}
	if got := f.quantity(t, it.ID); got != 10 {
		t.Errorf("quantity = %d, want 10", got)
	}
	if n := len(f.sent.all()); n != 0 {
		t.Errorf("stock-in sent %d notifications, want 0", n)
	}

	if _, err := f.engine.StockIn(context.Background(), StockInRequest{ItemID: it.ID, Quantity: 0}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero quantity err = %v, want ErrInvalidArgument", err)
	}
	if _, err := f.engine.StockIn(context.Background(), StockInRequest{ItemID: 404, Quantity: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item err = %v, want ErrNotFound", err)
	}
}

func TestStockInBatch_AppliesAllLines(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A item", 0, 0)
	b := f.item(t, "B item", 0, 0)

	mvs, err := f.engine.StockInBatch(context.Background(), []BatchLine{
		{ItemID: a.ID, Quantity: 5},
		{ItemID: b.ID, Quantity: 3, Notes: "own note"},
	}, "delivery 12", nil)
	if err != nil {
		t.Fatalf("StockInBatch: %v", err)
	}
	if len(mvs) != 2 {
		t.Fatalf("movements = %d, want 2", len(mvs))
	}
	if got := f.quantity(t, a.ID); got != 5 {
		t.Errorf("A quantity = %d, want 5", got)
	}
	if got := f.quantity(t, b.ID); got != 3 {
		t.Errorf("B quantity = %d, want 3", got)
	}
	if mvs[0].Transaction.Notes != "delivery 12" {
		t.Errorf("line 1 notes = %q, want global note", mvs[0].Transaction.Notes)
	}
	if mvs[1].Transaction.Notes != "own note" {
		t.Errorf("line 2 notes = %q, want own note", mvs[1].Transaction.Notes)
	}
	all, _ := f.txs.List(context.Background(), inventoryRepo.TransactionFilter{Type: inventoryEntity.TypeIn})
	if len(all) != 2 {
		t.Errorf("IN transactions = %d, want 2", len(all))
	}
}

func TestStockInBatch_BadLineWritesNothing(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A item", 1, 0)
	ctx := context.Background()

	_, err := f.engine.StockInBatch(ctx, []BatchLine{{ItemID: a.ID, Quantity: 5}, {ItemID: 999, Quantity: 1}}, "", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var le *LineError
	if !errors.As(err, &le) || le.Index != 1 {
		t.Errorf("err = %v, want LineError at index 1", err)
	}

	_, err = f.engine.StockInBatch(ctx, []BatchLine{{ItemID: a.ID, Quantity: 5}, {ItemID: a.ID, Quantity: 0}}, "", nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := f.engine.StockInBatch(ctx, nil, "", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty batch err = %v, want ErrInvalidArgument", err)
	}

	if got := f.quantity(t, a.ID); got != 1 {
		t.Errorf("quantity = %d, want 1", got)
	}
	if n := len(f.rows(t, a.ID)); n != 0 {
		t.Errorf("transactions = %d, want 0", n)
	}
}

func TestStockOutBatch_AtomicOnShortage(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A item", 5, 0)
	b := f.item(t, "B item", 2, 0)

	_, err := f.engine.StockOutBatch(context.Background(), []BatchLine{
		{ItemID: a.ID, Quantity: 3},
		{ItemID: b.ID, Quantity: 3},
	}, "CBD", "", nil)
	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if ise.ItemName != "B item" || ise.Available != 2 {
		t.Errorf("shortage = %+v", ise)
	}
	if got := f.quantity(t, a.ID); got != 5 {
		t.Errorf("A quantity = %d, want 5", got)
	}
	if got := f.quantity(t, b.ID); got != 2 {
		t.Errorf("B quantity = %d, want 2", got)
	}
	if n := len(f.rows(t, 0)); n != 0 {
		t.Errorf("transactions = %d, want 0", n)
	}
	if n := len(f.sent.all()); n != 0 {
		t.Errorf("notifications = %d, want 0", n)
	}
}

func TestStockOutBatch_SumsLinesForSameItem(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A item", 5, 0)

	_, err := f.engine.StockOutBatch(context.Background(), []BatchLine{
		{ItemID: a.ID, Quantity: 3},
		{ItemID: a.ID, Quantity: 3},
	}, "CBD", "", nil)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) && ise.Requested != 6 {
		t.Errorf("Requested = %d, want 6", ise.Requested)
	}
	if got := f.quantity(t, a.ID); got != 5 {
		t.Errorf("quantity = %d, want 5", got)
	}
}

func TestStockOutBatch_OneConsolidatedNotification(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A item", 5, 0)
	b := f.item(t, "B item", 5, 0)

	mvs, err := f.engine.StockOutBatch(context.Background(), []BatchLine{
		{ItemID: a.ID, Quantity: 2},
		{ItemID: b.ID, Quantity: 1, Notes: "fragile"},
		{ItemID: a.ID, Quantity: 3},
	}, "Westlands", "restock", nil)
	if err != nil {
		t.Fatalf("StockOutBatch: %v", err)
	}
	if len(mvs) != 3 {
		t.Fatalf("movements = %d, want 3", len(mvs))
	}
	if got := f.quantity(t, a.ID); got != 0 {
		t.Errorf("A quantity = %d, want 0", got)
	}
	if got := f.quantity(t, b.ID); got != 4 {
		t.Errorf("B quantity = %d, want 4", got)
	}

	events := f.sent.all()
	if len(events) != 1 {
		t.Fatalf("notifications = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Shop != "Westlands" || len(ev.Lines) != 3 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Lines[0].Notes != "restock" || ev.Lines[1].Notes != "fragile" {
		t.Errorf("notes = %q, %q", ev.Lines[0].Notes, ev.Lines[1].Notes)
	}
	for _, mv := range mvs {
		if mv.Transaction.Shop != "Westlands" {
			t.Errorf("row shop = %q, want Westlands", mv.Transaction.Shop)
		}
	}
}

func TestDeleteTransaction_ReversesStockOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vc := f.item(t, "Vitamin C 500mg", 10, 5)

	mv, err := f.engine.StockOut(ctx, StockOutRequest{ItemID: vc.ID, Quantity: 4, Shop: "CBD"})
	if err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	res, err := f.engine.DeleteTransaction(ctx, mv.Transaction.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if res.NewQuantity != 10 || res.RestoredQuantity != 4 || res.ItemName != "Vitamin C 500mg" {
		t.Errorf("result = %+v", res)
	}
	if got := f.quantity(t, vc.ID); got != 10 {
		t.Errorf("quantity = %d, want 10", got)
	}
	if n := len(f.rows(t, vc.ID)); n != 0 {
		t.Errorf("transactions = %d, want 0", n)
	}
	if n := len(f.sent.all()); n != 1 {
		t.Errorf("notifications = %d, want 1 (delete must not notify)", n)
	}

	if _, err := f.engine.DeleteTransaction(ctx, mv.Transaction.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTransaction_ReversesStockIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Omega 3", 1, 0)

	mv, err := f.engine.StockIn(ctx, StockInRequest{ItemID: it.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("StockIn: %v", err)
	}
	res, err := f.engine.DeleteTransaction(ctx, mv.Transaction.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if res.RestoredQuantity != -5 || res.NewQuantity != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestDeleteTransaction_RefusesNegativeReversal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Omega 3", 0, 0)

	in, err := f.engine.StockIn(ctx, StockInRequest{ItemID: it.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("StockIn: %v", err)
	}
	if _, err := f.engine.StockOut(ctx, StockOutRequest{ItemID: it.ID, Quantity: 4, Shop: "CBD"}); err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	if _, err := f.engine.DeleteTransaction(ctx, in.Transaction.ID); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := f.quantity(t, it.ID); got != 1 {
		t.Errorf("quantity = %d, want 1", got)
	}
	if n := len(f.rows(t, it.ID)); n != 2 {
		t.Errorf("transactions = %d, want 2", n)
	}
}

func TestDeleteTransaction_OrphanedRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Gone", 5, 0)

	mv, err := f.engine.StockOut(ctx, StockOutRequest{ItemID: it.ID, Quantity: 2, Shop: "CBD"})
	if err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	if err := f.items.Delete(ctx, it.ID); err != nil {
		t.Fatalf("Delete item: %v", err)
	}
	res, err := f.engine.DeleteTransaction(ctx, mv.Transaction.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if res.ItemName != inventoryEntity.UnknownItemName || res.RestoredQuantity != 0 {
		t.Errorf("result = %+v", res)
	}
	if _, err := f.txs.Get(ctx, mv.Transaction.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("row still present: %v", err)
	}
}

// Quantity always equals the signed ledger sum when every change went
// through the engine, and never goes negative.
func TestLedgerConsistency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A item", 0, 0)
	b := f.item(t, "B item", 0, 0)

	steps := []func() error{
		func() error { _, err := f.engine.StockIn(ctx, StockInRequest{ItemID: a.ID, Quantity: 7}); return err },
		func() error {
			_, err := f.engine.StockInBatch(ctx, []BatchLine{{ItemID: a.ID, Quantity: 1}, {ItemID: b.ID, Quantity: 4}}, "", nil)
			return err
		},
		func() error {
			_, err := f.engine.StockOut(ctx, StockOutRequest{ItemID: a.ID, Quantity: 6, Shop: "CBD"})
			return err
		},
		func() error {
			_, err := f.engine.StockOutBatch(ctx, []BatchLine{{ItemID: a.ID, Quantity: 2}, {ItemID: b.ID, Quantity: 4}}, "Mall", "", nil)
			return err
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	// Rejected operations must not disturb the ledger either.
	_, _ = f.engine.StockOut(ctx, StockOutRequest{ItemID: b.ID, Quantity: 1, Shop: "CBD"})
	_, _ = f.engine.StockOutBatch(ctx, []BatchLine{{ItemID: a.ID, Quantity: 1}, {ItemID: b.ID, Quantity: 1}}, "CBD", "", nil)

	drift, err := f.engine.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(drift) != 0 {
		t.Errorf("drift = %+v, want none", drift)
	}
	if got := f.quantity(t, a.ID); got != 0 {
		t.Errorf("A quantity = %d, want 0", got)
	}
}

func TestReconcile_ReportsDirectEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Edited", 0, 0)
	if _, err := f.engine.StockIn(ctx, StockInRequest{ItemID: it.ID, Quantity: 4}); err != nil {
		t.Fatalf("StockIn: %v", err)
	}
	q := 9
	if _, err := f.items.Update(ctx, it.ID, inventoryRepo.ItemFields{Quantity: &q}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	drift, err := f.engine.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(drift) != 1 {
		t.Fatalf("drift = %+v, want 1 entry", drift)
	}
	if drift[0].LedgerTotal != 4 || drift[0].Difference() != 5 {
		t.Errorf("drift = %+v", drift[0])
	}
}

func TestStockOut_ConcurrentNeverNegative(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "Contended", 10, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.StockOut(context.Background(), StockOutRequest{ItemID: it.ID, Quantity: 3, Shop: "CBD"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 3 {
		t.Errorf("successful stock-outs = %d, want 3", succeeded)
	}
	if got := f.quantity(t, it.ID); got != 1 {
		t.Errorf("quantity = %d, want 1", got)
	}
}

func TestClassify(t *testing.T) {
	store := errors.New("connection reset")
	err := classify("stock in", store)
	if !errors.Is(err, ErrDependency) || !errors.Is(err, store) {
		t.Errorf("classify = %v, want ErrDependency wrapping the cause", err)
	}
	if err := classify("x", ErrNotFound); errors.Is(err, ErrDependency) {
		t.Error("not-found must not be tagged as a dependency failure")
	}
	if classify("x", nil) != nil {
		t.Error("classify(nil) != nil")
	}
}

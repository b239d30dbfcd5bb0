package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/notify"
)

// Engine applies stock movements. Every operation runs in one database
// transaction: the ledger row and the quantity change commit together or
// not at all.
type Engine struct {
	db       *gorm.DB
	items    *inventoryRepo.ItemRepository
	txs      *inventoryRepo.TransactionRepository
	notifier notify.Dispatcher
	now      func() time.Time
}

func NewEngine(db *gorm.DB, d notify.Dispatcher) *Engine {
	if d == nil {
		d = notify.Discard{}
	}
	return &Engine{
		db:       db,
		items:    inventoryRepo.NewItemRepository(db),
		txs:      inventoryRepo.NewTransactionRepository(db),
		notifier: d,
		now:      time.Now,
	}
}

type StockInRequest struct {
	ItemID   uint
	Quantity int
	Notes    string
	Date     *datatypes.Date
}

type StockOutRequest struct {
	ItemID   uint
	Quantity int
	Notes    string
	Shop     string
	Date     *datatypes.Date
}

// BatchLine is one row of a batch request. Empty Notes falls back to the
// batch-level note.
type BatchLine struct {
	ItemID   uint
	Quantity int
	Notes    string
}

// Movement is a recorded ledger row with the item state after it applied.
type Movement struct {
	Transaction inventoryEntity.Transaction `json:"transaction"`
	Item        inventoryEntity.Item        `json:"item"`
}

// DeleteResult describes a reversed transaction. RestoredQuantity is the
// signed change applied to the item; NewQuantity is zero when the item no
// longer exists.
type DeleteResult struct {
	Transaction      inventoryEntity.Transaction `json:"transaction"`
	ItemName         string                      `json:"item_name"`
	RestoredQuantity int                         `json:"restored_quantity"`
	NewQuantity      int                         `json:"new_quantity"`
}

func (e *Engine) repos(tx *gorm.DB) (*inventoryRepo.ItemRepository, *inventoryRepo.TransactionRepository) {
	return e.items.WithTx(tx), e.txs.WithTx(tx)
}

func positive(q int) error {
	if q <= 0 {
		return fmt.Errorf("quantity must be greater than 0: %w", ErrInvalidArgument)
	}
	return nil
}

// StockIn records an IN row and raises the item's quantity.
func (e *Engine) StockIn(ctx context.Context, req StockInRequest) (*Movement, error) {
	if err := positive(req.Quantity); err != nil {
		return nil, err
	}
	var mv *Movement
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, txs := e.repos(tx)
		if _, err := items.Get(ctx, req.ItemID); err != nil {
			return err
		}
		row := inventoryEntity.Transaction{
			ItemID:          req.ItemID,
			Type:            inventoryEntity.TypeIn,
			Quantity:        req.Quantity,
			Notes:           req.Notes,
			TransactionDate: req.Date,
		}
		if err := txs.Insert(ctx, &row); err != nil {
			return err
		}
		ok, err := items.ApplyDelta(ctx, req.ItemID, req.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %d: %w", req.ItemID, ErrNotFound)
		}
		item, err := items.Get(ctx, req.ItemID)
		if err != nil {
			return err
		}
		mv = &Movement{Transaction: row, Item: *item}
		return nil
	})
	if err != nil {
		return nil, classify("stock in", err)
	}
	return mv, nil
}

// StockOut records an OUT row and lowers the item's quantity. A request
// larger than the available stock fails without touching anything. On
// success the stock-out mail is handed off without waiting for it.
func (e *Engine) StockOut(ctx context.Context, req StockOutRequest) (*Movement, error) {
	if err := positive(req.Quantity); err != nil {
		return nil, err
	}
	shop := strings.TrimSpace(req.Shop)
	if shop == "" {
		return nil, fmt.Errorf("destination shop is required: %w", ErrInvalidArgument)
	}

	var mv *Movement
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, txs := e.repos(tx)
		item, err := items.Get(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if item.Quantity < req.Quantity {
			return shortage(item, req.Quantity)
		}
		if err := decrement(ctx, items, item, req.Quantity); err != nil {
			return err
		}
		row := inventoryEntity.Transaction{
			ItemID:          req.ItemID,
			Type:            inventoryEntity.TypeOut,
			Quantity:        req.Quantity,
			Notes:           req.Notes,
			Shop:            shop,
			TransactionDate: req.Date,
		}
		if err := txs.Insert(ctx, &row); err != nil {
			return err
		}
		after, err := items.Get(ctx, req.ItemID)
		if err != nil {
			return err
		}
		mv = &Movement{Transaction: row, Item: *after}
		return nil
	})
	if err != nil {
		return nil, classify("stock out", err)
	}

	e.notifier.Notify(notify.StockOutEvent{
		Shop:  shop,
		Lines: []notify.StockOutLine{outLine(&mv.Item, req.Quantity, req.Notes)},
		At:    e.now(),
	})
	return mv, nil
}

// StockInBatch validates every line first, then applies all of them in one
// transaction. A single bad line means nothing is written.
func (e *Engine) StockInBatch(ctx context.Context, lines []BatchLine, notes string, date *datatypes.Date) ([]Movement, error) {
	if err := checkLines(lines); err != nil {
		return nil, err
	}
	var out []Movement
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, txs := e.repos(tx)
		found, err := items.GetMany(ctx, lineIDs(lines))
		if err != nil {
			return err
		}
		for i, l := range lines {
			if _, ok := found[l.ItemID]; !ok {
				return &LineError{Index: i, Err: fmt.Errorf("item %d: %w", l.ItemID, ErrNotFound)}
			}
		}

		rows := make([]inventoryEntity.Transaction, len(lines))
		for i, l := range lines {
			rows[i] = inventoryEntity.Transaction{
				ItemID:          l.ItemID,
				Type:            inventoryEntity.TypeIn,
				Quantity:        l.Quantity,
				Notes:           lineNote(l, notes),
				TransactionDate: date,
			}
			if err := txs.Insert(ctx, &rows[i]); err != nil {
				return err
			}
			ok, err := items.ApplyDelta(ctx, l.ItemID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &LineError{Index: i, Err: fmt.Errorf("item %d: %w", l.ItemID, ErrNotFound)}
			}
		}
		out, err = movements(ctx, items, rows)
		return err
	})
	if err != nil {
		return nil, classify("stock in batch", err)
	}
	return out, nil
}

// StockOutBatch checks existence and cumulative availability per item, so
// two lines for the same item are judged on their sum. All lines apply in
// one transaction and one consolidated mail goes out after commit.
func (e *Engine) StockOutBatch(ctx context.Context, lines []BatchLine, shop, notes string, date *datatypes.Date) ([]Movement, error) {
	if err := checkLines(lines); err != nil {
		return nil, err
	}
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, fmt.Errorf("destination shop is required: %w", ErrInvalidArgument)
	}

	var out []Movement
	var before map[uint]*inventoryEntity.Item
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, txs := e.repos(tx)
		found, err := items.GetMany(ctx, lineIDs(lines))
		if err != nil {
			return err
		}
		before = found

		want := make(map[uint]int, len(lines))
		for i, l := range lines {
			item, ok := found[l.ItemID]
			if !ok {
				return &LineError{Index: i, Err: fmt.Errorf("item %d: %w", l.ItemID, ErrNotFound)}
			}
			want[l.ItemID] += l.Quantity
			if want[l.ItemID] > item.Quantity {
				return &LineError{Index: i, Err: shortage(item, want[l.ItemID])}
			}
		}

		rows := make([]inventoryEntity.Transaction, len(lines))
		for i, l := range lines {
			if err := decrement(ctx, items, found[l.ItemID], l.Quantity); err != nil {
				return &LineError{Index: i, Err: err}
			}
			rows[i] = inventoryEntity.Transaction{
				ItemID:          l.ItemID,
				Type:            inventoryEntity.TypeOut,
				Quantity:        l.Quantity,
				Notes:           lineNote(l, notes),
				Shop:            shop,
				TransactionDate: date,
			}
			if err := txs.Insert(ctx, &rows[i]); err != nil {
				return err
			}
		}
		out, err = movements(ctx, items, rows)
		return err
	})
	if err != nil {
		return nil, classify("stock out batch", err)
	}

	ev := notify.StockOutEvent{Shop: shop, At: e.now()}
	for _, l := range lines {
		ev.Lines = append(ev.Lines, outLine(before[l.ItemID], l.Quantity, lineNote(l, notes)))
	}
	e.notifier.Notify(ev)
	return out, nil
}

// DeleteTransaction removes a ledger row and undoes its effect on the item.
// Reversing an IN whose stock has since gone out is refused, since it would
// drive the quantity negative. Rows whose item was deleted are removed
// without any quantity change.
func (e *Engine) DeleteTransaction(ctx context.Context, id uint) (*DeleteResult, error) {
	var res *DeleteResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, txs := e.repos(tx)
		row, err := txs.Get(ctx, id)
		if err != nil {
			return err
		}
		res = &DeleteResult{Transaction: *row, ItemName: inventoryEntity.UnknownItemName}

		item, err := items.Get(ctx, row.ItemID)
		switch {
		case errors.Is(err, ErrNotFound):
			return txs.Delete(ctx, id)
		case err != nil:
			return err
		}
		res.ItemName = item.Name

		delta := -row.Signed()
		ok, err := items.ApplyDelta(ctx, item.ID, delta)
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientStockError{ItemID: item.ID, ItemName: item.Name, Requested: row.Quantity, Available: item.Quantity}
		}
		if err := txs.Delete(ctx, id); err != nil {
			return err
		}
		after, err := items.Get(ctx, item.ID)
		if err != nil {
			return err
		}
		res.RestoredQuantity = delta
		res.NewQuantity = after.Quantity
		return nil
	})
	if err != nil {
		return nil, classify("delete transaction", err)
	}
	return res, nil
}

// Drift is an item whose quantity differs from the signed sum of its ledger rows.
type Drift struct {
	ItemID      uint   `json:"item_id"`
	ItemName    string `json:"item_name"`
	Quantity    int    `json:"quantity"`
	LedgerTotal int    `json:"ledger_total"`
}

// Difference is the out-of-ledger amount: quantity minus ledger total.
func (d Drift) Difference() int {
	return d.Quantity - d.LedgerTotal
}

// Reconcile lists items whose quantity no longer matches their ledger,
// which happens after direct quantity edits or imports with opening stock.
func (e *Engine) Reconcile(ctx context.Context) ([]Drift, error) {
	items, err := e.items.List(ctx, inventoryRepo.ItemFilter{})
	if err != nil {
		return nil, classify("reconcile", err)
	}
	totals, err := e.txs.SignedTotals(ctx)
	if err != nil {
		return nil, classify("reconcile", err)
	}
	var drift []Drift
	for _, it := range items {
		if total := totals[it.ID]; total != it.Quantity {
			drift = append(drift, Drift{ItemID: it.ID, ItemName: it.Name, Quantity: it.Quantity, LedgerTotal: total})
		}
	}
	return drift, nil
}

func shortage(item *inventoryEntity.Item, requested int) *InsufficientStockError {
	return &InsufficientStockError{ItemID: item.ID, ItemName: item.Name, Requested: requested, Available: item.Quantity}
}

// decrement applies the guarded update and reports a shortage when the
// guard rejects it.
func decrement(ctx context.Context, items *inventoryRepo.ItemRepository, item *inventoryEntity.Item, q int) error {
	ok, err := items.ApplyDelta(ctx, item.ID, -q)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	current, err := items.Get(ctx, item.ID)
	if err != nil {
		return err
	}
	return shortage(current, q)
}

func checkLines(lines []BatchLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("at least one item is required: %w", ErrInvalidArgument)
	}
	for i, l := range lines {
		if l.ItemID == 0 {
			return &LineError{Index: i, Err: fmt.Errorf("item is required: %w", ErrInvalidArgument)}
		}
		if err := positive(l.Quantity); err != nil {
			return &LineError{Index: i, Err: err}
		}
	}
	return nil
}

func lineIDs(lines []BatchLine) []uint {
	seen := make(map[uint]bool, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			ids = append(ids, l.ItemID)
		}
	}
	return ids
}

func lineNote(l BatchLine, global string) string {
	if strings.TrimSpace(l.Notes) != "" {
		return l.Notes
	}
	return global
}

func movements(ctx context.Context, items *inventoryRepo.ItemRepository, rows []inventoryEntity.Transaction) ([]Movement, error) {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ItemID)
	}
	after, err := items.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Movement, len(rows))
	for i, r := range rows {
		out[i] = Movement{Transaction: r}
		if it, ok := after[r.ItemID]; ok {
			out[i].Item = *it
		}
	}
	return out, nil
}

func outLine(item *inventoryEntity.Item, q int, notes string) notify.StockOutLine {
	return notify.StockOutLine{
		ItemName: item.Name,
		SKU:      item.SKU,
		Unit:     item.Unit,
		Quantity: q,
		Notes:    notes,
	}
}

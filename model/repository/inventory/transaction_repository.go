package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	inventoryEntity "vitastore.GO/model/entity/inventory"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

// TransactionFilter narrows List. Zero values are ignored.
type TransactionFilter struct {
	ItemID uint
	Type   inventoryEntity.TransactionType
	Limit  int
	// Search matches item name, sku or shop, case-insensitive.
	Search string
}

// joined selects ledger rows with item display fields; deleted items yield empty strings.
const joinedColumns = `transactions.*,
	COALESCE(items.name, '') AS item_name,
	COALESCE(items.sku, '') AS item_sku,
	COALESCE(items.unit, '') AS item_unit`

func (r *TransactionRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transactions").
		Select(joinedColumns).
		Joins("LEFT JOIN items ON items.id = transactions.item_id")
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *inventoryEntity.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *TransactionRepository) Get(ctx context.Context, id uint) (*inventoryEntity.Transaction, error) {
	var t inventoryEntity.Transaction
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns joined rows, newest first.
func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]inventoryEntity.TransactionView, error) {
	q := r.joined(ctx)
	if f.ItemID != 0 {
		q = q.Where("transactions.item_id = ?", f.ItemID)
	}
	if f.Type != "" {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("type %q: %w", f.Type, ErrInvalidArgument)
		}
		q = q.Where("transactions.type = ?", f.Type)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(items.name) LIKE ? OR LOWER(items.sku) LIKE ? OR LOWER(transactions.shop) LIKE ?", like, like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []inventoryEntity.TransactionView
	err := q.Order("transactions.created_at DESC").Order("transactions.id DESC").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the row; ErrNotFound when it was already gone.
func (r *TransactionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&inventoryEntity.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// SignedTotals sums IN minus OUT per item over all existing rows.
func (r *TransactionRepository) SignedTotals(ctx context.Context) (map[uint]int, error) {
	rows, err := r.db.WithContext(ctx).
		Table("transactions").
		Select("item_id, SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END) AS total", inventoryEntity.TypeIn).
		Group("item_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[uint]int)
	for rows.Next() {
		var itemID uint
		var total int
		if err := rows.Scan(&itemID, &total); err != nil {
			return nil, err
		}
		totals[itemID] = total
	}
	return totals, rows.Err()
}

// ShopOutTotal sums OUT quantities booked for shop since the given time,
// across every item carrying sku.
func (r *TransactionRepository) ShopOutTotal(ctx context.Context, sku, shop string, since time.Time) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Table("transactions").
		Joins("JOIN items ON items.id = transactions.item_id").
		Where("items.sku = ? AND transactions.shop = ? AND transactions.type = ? AND transactions.created_at >= ?",
			sku, shop, inventoryEntity.TypeOut, since).
		Select("COALESCE(SUM(transactions.quantity), 0)").
		Row().Scan(&total)
	return total, err
}

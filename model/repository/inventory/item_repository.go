package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	inventoryEntity "vitastore.GO/model/entity/inventory"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ItemRepository) WithTx(tx *gorm.DB) *ItemRepository {
	return &ItemRepository{db: tx}
}

// ItemFilter narrows List. Empty fields are ignored.
type ItemFilter struct {
	Search   string // case-insensitive substring of name or sku
	Category string // exact match
	Status   string // out, low or ok
}

// ItemFields is a partial update; nil fields are left untouched.
type ItemFields struct {
	Name       *string
	SKU        *string
	Category   *string
	Quantity   *int
	MinStock   *int
	Unit       *string
	Price      *float64
	ExpiryDate *datatypes.Date
	// ClearExpiry removes the expiry date when true.
	ClearExpiry bool
}

func (r *ItemRepository) Get(ctx context.Context, id uint) (*inventoryEntity.Item, error) {
	var item inventoryEntity.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetBySKU returns the oldest item carrying sku. SKUs are not unique.
func (r *ItemRepository) GetBySKU(ctx context.Context, sku string) (*inventoryEntity.Item, error) {
	var item inventoryEntity.Item
	err := r.db.WithContext(ctx).Where("sku = ?", sku).Order("id ASC").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("sku %q: %w", sku, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetMany loads items by id. Missing ids are simply absent from the map.
func (r *ItemRepository) GetMany(ctx context.Context, ids []uint) (map[uint]*inventoryEntity.Item, error) {
	out := make(map[uint]*inventoryEntity.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []inventoryEntity.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

// List returns items ordered by name ascending.
func (r *ItemRepository) List(ctx context.Context, f ItemFilter) ([]inventoryEntity.Item, error) {
	q := r.db.WithContext(ctx).Model(&inventoryEntity.Item{})
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	switch f.Status {
	case "":
	case inventoryEntity.StatusOut:
		q = q.Where("quantity = 0")
	case inventoryEntity.StatusLow:
		q = q.Where("quantity > 0 AND quantity <= min_stock")
	case inventoryEntity.StatusOK:
		q = q.Where("quantity > min_stock")
	default:
		return nil, fmt.Errorf("status %q: %w", f.Status, ErrInvalidArgument)
	}
	var items []inventoryEntity.Item
	if err := q.Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *inventoryEntity.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Unit == "" {
		item.Unit = inventoryEntity.DefaultUnit
	}
	if err := validateItem(item); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// Update applies a direct edit. Quantity changes made here bypass the ledger
// and are logged as out-of-ledger corrections.
func (r *ItemRepository) Update(ctx context.Context, id uint, f ItemFields) (*inventoryEntity.Item, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := item.Quantity

	updates := map[string]interface{}{}
	if f.Name != nil {
		item.Name = strings.TrimSpace(*f.Name)
		updates["name"] = item.Name
	}
	if f.SKU != nil {
		item.SKU = *f.SKU
		updates["sku"] = item.SKU
	}
	if f.Category != nil {
		item.Category = *f.Category
		updates["category"] = item.Category
	}
	if f.Quantity != nil {
		item.Quantity = *f.Quantity
		updates["quantity"] = item.Quantity
	}
	if f.MinStock != nil {
		item.MinStock = *f.MinStock
		updates["min_stock"] = item.MinStock
	}
	if f.Unit != nil {
		item.Unit = *f.Unit
		if item.Unit == "" {
			item.Unit = inventoryEntity.DefaultUnit
		}
		updates["unit"] = item.Unit
	}
	if f.Price != nil {
		item.Price = *f.Price
		updates["price"] = item.Price
	}
	if f.ClearExpiry {
		item.ExpiryDate = nil
		updates["expiry_date"] = nil
	} else if f.ExpiryDate != nil {
		item.ExpiryDate = f.ExpiryDate
		updates["expiry_date"] = f.ExpiryDate
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now()
	updates["updated_at"] = item.UpdatedAt
	if err := r.db.WithContext(ctx).Model(&inventoryEntity.Item{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	if item.Quantity != before {
		log.Printf("item %d: out-of-ledger quantity correction %d -> %d", id, before, item.Quantity)
	}
	return item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&inventoryEntity.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// ApplyDelta adds delta to the item's quantity in one conditional statement.
// A negative delta only applies while quantity stays >= 0. The returned bool
// is false when the row is missing or the guard rejected the update.
func (r *ItemRepository) ApplyDelta(ctx context.Context, id uint, delta int) (bool, error) {
	q := r.db.WithContext(ctx).Model(&inventoryEntity.Item{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("quantity >= ?", -delta)
	}
	res := q.UpdateColumns(map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func validateItem(item *inventoryEntity.Item) error {
	switch {
	case item.Name == "":
		return fmt.Errorf("name is required: %w", ErrInvalidArgument)
	case item.Quantity < 0:
		return fmt.Errorf("quantity must be >= 0: %w", ErrInvalidArgument)
	case item.MinStock < 0:
		return fmt.Errorf("min_stock must be >= 0: %w", ErrInvalidArgument)
	case item.Price < 0:
		return fmt.Errorf("price must be >= 0: %w", ErrInvalidArgument)
	}
	return nil
}

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/ledger"
)

// OpeningStockNote is written on the IN row created for an imported quantity.
const OpeningStockNote = "Opening stock (import)"

// Row is one CSV line. Columns are matched by header name; numbers may be
// written as text.
type Row struct {
	Name       string          `mapstructure:"name"`
	SKU        string          `mapstructure:"sku"`
	Category   string          `mapstructure:"category"`
	Quantity   int             `mapstructure:"quantity"`
	MinStock   int             `mapstructure:"min_stock"`
	Unit       string          `mapstructure:"unit"`
	Price      float64         `mapstructure:"price"`
	ExpiryDate *datatypes.Date `mapstructure:"expiry_date"`

	// Present holds the columns that carried a non-empty value.
	Present map[string]bool `mapstructure:"-"`
}

// Has reports whether the row gave a value for column.
func (r *Row) Has(column string) bool {
	return r.Present[column]
}

var knownColumns = map[string]bool{
	"name": true, "sku": true, "category": true, "quantity": true,
	"min_stock": true, "unit": true, "price": true, "expiry_date": true,
}

// Result holds counters and timing from an import run.
type Result struct {
	TotalRows int
	Created   int
	Updated   int
	Skipped   int
	Warnings  []string
	TotalTime time.Duration
}

// ImportItems reads a CSV catalog. Rows whose sku matches an existing item
// update its descriptive fields; other rows create items. A quantity on a
// new item is booked as an IN transaction so the ledger stays complete;
// quantities on existing items are ignored with a warning.
func ImportItems(ctx context.Context, db *gorm.DB, engine *ledger.Engine, r io.Reader) (*Result, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	hasName := false
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
		if headers[i] == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("CSV must contain a 'name' column")
	}

	res := &Result{}
	for _, h := range headers {
		if !knownColumns[h] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	res.TotalRows = len(rows)

	items := inventoryRepo.NewItemRepository(db)
	bySKU, err := existingSKUs(ctx, items)
	if err != nil {
		return nil, err
	}

	for i, raw := range rows {
		line := i + 2
		row, err := DecodeRow(headers, raw)
		if err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if existing, ok := bySKU[row.SKU]; ok && row.SKU != "" {
			if row.Quantity != 0 && row.Quantity != existing.Quantity {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: quantity ignored for existing sku %q, use stock in/out", line, row.SKU))
			}
			if _, err := items.Update(ctx, existing.ID, fieldsFrom(row)); err != nil {
				res.Skipped++
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			res.Updated++
			continue
		}

		item := inventoryEntity.Item{
			Name: row.Name, SKU: row.SKU, Category: row.Category, MinStock: row.MinStock,
			Unit: row.Unit, Price: row.Price, ExpiryDate: row.ExpiryDate,
		}
		if row.Quantity < 0 {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: quantity must be >= 0", line))
			continue
		}
		if err := items.Create(ctx, &item); err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		res.Created++
		if row.SKU != "" {
			bySKU[row.SKU] = &item
		}
		if row.Quantity > 0 {
			_, err := engine.StockIn(ctx, ledger.StockInRequest{ItemID: item.ID, Quantity: row.Quantity, Notes: OpeningStockNote})
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: opening stock not booked: %v", line, err))
			}
		}
	}

	res.TotalTime = time.Since(start)
	return res, nil
}

func existingSKUs(ctx context.Context, items *inventoryRepo.ItemRepository) (map[string]*inventoryEntity.Item, error) {
	all, err := items.List(ctx, inventoryRepo.ItemFilter{})
	if err != nil {
		return nil, err
	}
	m := make(map[string]*inventoryEntity.Item, len(all))
	for i := range all {
		if all[i].SKU != "" {
			m[all[i].SKU] = &all[i]
		}
	}
	return m, nil
}

// fieldsFrom only touches the columns the row filled in, so a partial CSV
// leaves the rest of the item alone.
func fieldsFrom(row *Row) inventoryRepo.ItemFields {
	f := inventoryRepo.ItemFields{Name: &row.Name}
	if row.Has("category") {
		f.Category = &row.Category
	}
	if row.Has("min_stock") {
		f.MinStock = &row.MinStock
	}
	if row.Has("price") {
		f.Price = &row.Price
	}
	if row.Has("unit") {
		f.Unit = &row.Unit
	}
	if row.Has("expiry_date") {
		f.ExpiryDate = row.ExpiryDate
	}
	return f
}

// DecodeRow maps a CSV record onto Row by header name.
func DecodeRow(headers, record []string) (*Row, error) {
	m := make(map[string]interface{}, len(headers))
	for i, h := range headers {
		if !knownColumns[h] || i >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[i])
		if v == "" {
			continue
		}
		m[h] = v
	}

	var row Row
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       dateHook,
		Result:           &row,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	if strings.TrimSpace(row.Name) == "" {
		return nil, errors.New("name is required")
	}
	row.Present = make(map[string]bool, len(m))
	for h := range m {
		row.Present[h] = true
	}
	return &row, nil
}

var dateType = reflect.TypeOf(datatypes.Date{})

// dateHook parses YYYY-MM-DD (or DD/MM/YYYY) strings into datatypes.Date.
func dateHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != dateType {
		return data, nil
	}
	s := data.(string)
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.Date(t), nil
		}
	}
	return nil, fmt.Errorf("expiry_date %q: want YYYY-MM-DD", s)
}

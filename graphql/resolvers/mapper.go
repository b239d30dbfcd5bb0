package resolvers

import (
	"strconv"
	"time"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "vitastore.GO/graphql/models"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	"vitastore.GO/service/summary"
)

const dateLayout = "2006-01-02"

func toID(id uint) gql.ID {
	return gql.ID(strconv.FormatUint(uint64(id), 10))
}

func fromID(id gql.ID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	return uint(n), err
}

// optional maps "" to nil so empty columns come back as null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapItem(it *inventoryEntity.Item) *gqlmodels.Item {
	out := &gqlmodels.Item{
		ID:        toID(it.ID),
		Name:      it.Name,
		SKU:       optional(it.SKU),
		Category:  optional(it.Category),
		Quantity:  int32(it.Quantity),
		MinStock:  int32(it.MinStock),
		Unit:      it.Unit,
		Price:     it.Price,
		Status:    it.Status(),
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
		UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
	}
	if it.ExpiryDate != nil {
		d := time.Time(*it.ExpiryDate).Format(dateLayout)
		out.ExpiryDate = &d
	}
	return out
}

func mapItems(items []inventoryEntity.Item) []*gqlmodels.Item {
	out := make([]*gqlmodels.Item, len(items))
	for i := range items {
		out[i] = mapItem(&items[i])
	}
	return out
}

func mapTransaction(v *inventoryEntity.TransactionView) *gqlmodels.Transaction {
	return &gqlmodels.Transaction{
		ID:        toID(v.ID),
		ItemID:    toID(v.ItemID),
		ItemName:  v.DisplayName(),
		ItemSKU:   optional(v.ItemSKU),
		ItemUnit:  optional(v.ItemUnit),
		Type:      string(v.Type),
		Quantity:  int32(v.Quantity),
		Notes:     optional(v.Notes),
		Shop:      optional(v.Shop),
		Date:      v.EffectiveDate().Format(dateLayout),
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
}

func mapTransactions(views []inventoryEntity.TransactionView) []*gqlmodels.Transaction {
	out := make([]*gqlmodels.Transaction, len(views))
	for i := range views {
		out[i] = mapTransaction(&views[i])
	}
	return out
}

func mapSummary(s *summary.Summary) *gqlmodels.Summary {
	return &gqlmodels.Summary{
		TotalItems:         int32(s.TotalItems),
		LowStock:           int32(s.LowStock),
		Categories:         int32(s.Categories),
		TotalValue:         s.TotalValue,
		HealthPercent:      int32(s.HealthPercent),
		LowStockItems:      mapItems(s.LowStockItems),
		TopItems:           mapItems(s.TopItems),
		RecentTransactions: mapTransactions(s.RecentTransactions),
	}
}

func mapExpiring(items []summary.ExpiringItem) []*gqlmodels.ExpiringItem {
	out := make([]*gqlmodels.ExpiringItem, len(items))
	for i := range items {
		e := &items[i]
		out[i] = &gqlmodels.ExpiringItem{
			Item:            mapItem(&e.Item),
			DaysUntilExpiry: int32(e.DaysUntilExpiry),
			Soon:            e.Soon(),
			VerySoon:        e.VerySoon(),
		}
	}
	return out
}

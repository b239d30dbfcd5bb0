package summary

import (
	"context"
	"math"
	"sort"
	"time"

	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

// ExpiringItem is an item whose expiry date falls inside the alert window.
type ExpiringItem struct {
	inventoryEntity.Item
	DaysUntilExpiry int `json:"days_until_expiry"`
}

// Soon and VerySoon mirror the dashboard's orange and red badges.
func (e ExpiringItem) Soon() bool     { return e.DaysUntilExpiry <= 30 }
func (e ExpiringItem) VerySoon() bool { return e.DaysUntilExpiry <= 7 }

// ExpiringItems lists items expiring between today and one year from now,
// soonest first.
func (p *Projector) ExpiringItems(ctx context.Context, now time.Time) ([]ExpiringItem, error) {
	items, err := p.items.List(ctx, inventoryRepo.ItemFilter{})
	if err != nil {
		return nil, err
	}
	return Expiring(items, now), nil
}

// Expiring filters items by calendar day in now's location.
func Expiring(items []inventoryEntity.Item, now time.Time) []ExpiringItem {
	today := day(now, now.Location())
	limit := today.AddDate(1, 0, 0)

	out := []ExpiringItem{}
	for _, it := range items {
		if it.ExpiryDate == nil {
			continue
		}
		exp := day(time.Time(*it.ExpiryDate), now.Location())
		if exp.Before(today) || exp.After(limit) {
			continue
		}
		days := int(math.Round(exp.Sub(today).Hours() / 24))
		out = append(out, ExpiringItem{Item: it, DaysUntilExpiry: days})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilExpiry < out[j].DaysUntilExpiry
	})
	return out
}

// day truncates t to midnight, reading its calendar date as-is.
func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

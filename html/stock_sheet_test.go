package html

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"vitastore.GO/api/apitest"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory([]inventoryEntity.Item{
		{Name: "A", Category: "Vitamins"},
		{Name: "B"},
		{Name: "C", Category: "Minerals"},
		{Name: "D", Category: "Vitamins"},
	})
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	if got := strings.Join(names, ","); got != "Minerals,Vitamins,Uncategorised" {
		t.Errorf("groups = %s", got)
	}
	if len(groups[1].Items) != 2 || groups[1].Items[1].Name != "D" {
		t.Errorf("Vitamins = %+v", groups[1].Items)
	}
}

func TestStockSheet(t *testing.T) {
	db := apitest.DB(t)
	s, _ := apitest.Services(t, db)
	e := apitest.Server(s, RegisterStockSheetRoutes)
	e.Renderer = NewRenderer()

	repo := inventoryRepo.NewItemRepository(db)
	for _, it := range []inventoryEntity.Item{
		{Name: "Vitamin <C>", Category: "Vitamins", Quantity: 0, MinStock: 2},
		{Name: "Zinc", Category: "Minerals", Quantity: 9, MinStock: 2},
	} {
		it := it
		if err := repo.Create(context.Background(), &it); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res := apitest.Do(e, http.MethodGet, "/api/reports/stock-sheet", nil)
	apitest.Expect(t, res, http.StatusOK)
	body := res.Body.String()
	for _, want := range []string{"Vitamin &lt;C&gt;", `<tr class="out">`, "Minerals", "2 items", "border-collapse"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	apitest.Expect(t, apitest.Do(e, http.MethodGet, "/api/reports/stock-sheet?status=bogus", nil), http.StatusBadRequest)
}

package html

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
	"vitastore.GO/config"
	parts "vitastore.GO/html/parts"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterStockSheetRoutes)
}

// Group is one category section on the sheet.
type Group struct {
	Name  string
	Items []inventoryEntity.Item
}

// GroupByCategory keeps the catalog's name order inside each group.
// Uncategorised items come last.
func GroupByCategory(items []inventoryEntity.Item) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, it := range items {
		name := it.Category
		if name == "" {
			name = "Uncategorised"
		}
		i, ok := idx[name]
		if !ok {
			i = len(groups)
			idx[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if (groups[i].Name == "Uncategorised") != (groups[j].Name == "Uncategorised") {
			return groups[j].Name == "Uncategorised"
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// RegisterStockSheetRoutes mounts a printable stock-take sheet.
func RegisterStockSheetRoutes(apiGroup *echo.Group, s *api.Services) {
	repo := inventoryRepo.NewItemRepository(s.DB)

	// GET /api/reports/stock-sheet?category=&status=
	apiGroup.GET("/reports/stock-sheet", func(c echo.Context) error {
		items, err := repo.List(c.Request().Context(), inventoryRepo.ItemFilter{
			Category: c.QueryParam("category"),
			Status:   c.QueryParam("status"),
		})
		if err != nil {
			return api.Error(c, err)
		}
		return c.Render(http.StatusOK, "stock_sheet.html", map[string]interface{}{
			"AppName":  config.App().AppName,
			"Category": c.QueryParam("category"),
			"Printed":  time.Now().Format("2006-01-02 15:04"),
			"Total":    len(items),
			"Groups":   GroupByCategory(items),
			"CSS":      parts.GetCriticalCSS(),
		})
	})
}

package transaction

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterTransactionRoutes)
}

// row is a ledger entry as the dashboard shows it.
type row struct {
	inventoryEntity.TransactionView
	DisplayName string `json:"display_name"`
	Date        string `json:"date"`
}

func RegisterTransactionRoutes(apiGroup *echo.Group, s *api.Services) {
	repo := inventoryRepo.NewTransactionRepository(s.DB)
	items := inventoryRepo.NewItemRepository(s.DB)
	g := apiGroup.Group("/transactions")

	// GET /api/transactions?item_id=&type=IN|OUT&limit=&search=
	g.GET("", func(c echo.Context) error {
		f := inventoryRepo.TransactionFilter{
			Type:   inventoryEntity.TransactionType(c.QueryParam("type")),
			Search: c.QueryParam("search"),
		}
		if v := c.QueryParam("item_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return api.BadRequest(c, "invalid item_id")
			}
			f.ItemID = uint(id)
		}
		if v := c.QueryParam("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return api.BadRequest(c, "invalid limit")
			}
			f.Limit = n
		}

		views, err := repo.List(c.Request().Context(), f)
		if err != nil {
			return api.Error(c, err)
		}
		out := make([]row, len(views))
		for i := range views {
			out[i] = row{
				TransactionView: views[i],
				DisplayName:     views[i].DisplayName(),
				Date:            views[i].EffectiveDate().Format("2006-01-02"),
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"transactions": out, "count": len(out)})
	})

	// DELETE /api/transactions/:id reverses the row's effect on its item.
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		ctx := c.Request().Context()
		res, err := s.Ledger.DeleteTransaction(ctx, id)
		if err != nil {
			return api.Error(c, err)
		}
		if item, err := items.Get(ctx, res.Transaction.ItemID); err == nil {
			s.Changed(ctx, *item)
		} else {
			s.Summary.Invalidate(ctx)
		}
		return c.JSON(http.StatusOK, res)
	})
}

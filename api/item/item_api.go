package item

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterItemRoutes)
}

// itemInput is the create/update body. Pointers distinguish "absent" from zero.
type itemInput struct {
	Name       *string  `json:"name"`
	SKU        *string  `json:"sku"`
	Category   *string  `json:"category"`
	Quantity   *int     `json:"quantity"`
	MinStock   *int     `json:"min_stock"`
	Unit       *string  `json:"unit"`
	Price      *float64 `json:"price"`
	ExpiryDate *string  `json:"expiry_date"`
}

func (in itemInput) fields() (inventoryRepo.ItemFields, error) {
	f := inventoryRepo.ItemFields{
		Name: in.Name, SKU: in.SKU, Category: in.Category, Quantity: in.Quantity,
		MinStock: in.MinStock, Unit: in.Unit, Price: in.Price,
	}
	if in.ExpiryDate != nil {
		d, err := api.ParseDate(*in.ExpiryDate)
		if err != nil {
			return f, err
		}
		f.ExpiryDate = d
		f.ClearExpiry = d == nil
	}
	return f, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func RegisterItemRoutes(apiGroup *echo.Group, s *api.Services) {
	repo := inventoryRepo.NewItemRepository(s.DB)
	g := apiGroup.Group("/items")

	// GET /api/items?search=&category=&status=out|low|ok
	g.GET("", func(c echo.Context) error {
		items, err := repo.List(c.Request().Context(), inventoryRepo.ItemFilter{
			Search:   c.QueryParam("search"),
			Category: c.QueryParam("category"),
			Status:   c.QueryParam("status"),
		})
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
	})

	// GET /api/items/search?q= (Elasticsearch, falls back to the SQL filter)
	g.GET("/search", func(c echo.Context) error {
		q := c.QueryParam("q")
		if q == "" {
			return api.BadRequest(c, "q is required")
		}
		if s.Search != nil {
			items, err := s.Search.Search(c.Request().Context(), q, 20)
			if err == nil {
				return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items), "source": "elasticsearch"})
			}
			c.Logger().Warnf("elasticsearch search failed, using database: %v", err)
		}
		items, err := repo.List(c.Request().Context(), inventoryRepo.ItemFilter{Search: q})
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items), "source": "database"})
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		item, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, item)
	})

	g.POST("", func(c echo.Context) error {
		var in itemInput
		if err := c.Bind(&in); err != nil {
			return api.BadRequest(c, err.Error())
		}
		f, err := in.fields()
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		item := inventoryEntity.Item{
			Name: deref(in.Name), SKU: deref(in.SKU), Category: deref(in.Category),
			Quantity: deref(in.Quantity), MinStock: deref(in.MinStock), Unit: deref(in.Unit),
			Price: deref(in.Price), ExpiryDate: f.ExpiryDate,
		}
		ctx := c.Request().Context()
		if err := repo.Create(ctx, &item); err != nil {
			return api.Error(c, err)
		}
		s.Changed(ctx, item)
		return c.JSON(http.StatusCreated, item)
	})

	// PUT /api/items/:id is a direct edit. Quantity changes here are
	// out-of-ledger corrections; stock movements belong on /api/stock.
	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		var in itemInput
		if err := c.Bind(&in); err != nil {
			return api.BadRequest(c, err.Error())
		}
		f, err := in.fields()
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		ctx := c.Request().Context()
		item, err := repo.Update(ctx, id, f)
		if err != nil {
			return api.Error(c, err)
		}
		s.Changed(ctx, *item)
		return c.JSON(http.StatusOK, item)
	})

	// DELETE leaves the item's transactions in place; they render as "Unknown item".
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		ctx := c.Request().Context()
		if err := repo.Delete(ctx, id); err != nil {
			return api.Error(c, err)
		}
		s.Removed(ctx, id)
		return c.JSON(http.StatusOK, echo.Map{"deleted": id})
	})
}

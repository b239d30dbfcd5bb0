package stock

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	"vitastore.GO/service/ledger"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

type lineInput struct {
	ItemID   uint   `json:"item_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// movementInput accepts either a single line (item_id, quantity) or an
// items array for a batch. notes on the body is the batch-wide fallback.
type movementInput struct {
	ItemID   uint        `json:"item_id"`
	Quantity int         `json:"quantity"`
	Notes    string      `json:"notes"`
	Shop     string      `json:"shop"`
	Date     string      `json:"date"`
	Items    []lineInput `json:"items"`
}

func (in movementInput) lines() []ledger.BatchLine {
	out := make([]ledger.BatchLine, len(in.Items))
	for i, l := range in.Items {
		out[i] = ledger.BatchLine{ItemID: l.ItemID, Quantity: l.Quantity, Notes: l.Notes}
	}
	return out
}

func RegisterStockRoutes(apiGroup *echo.Group, s *api.Services) {
	g := apiGroup.Group("/stock")

	// POST /api/stock/in
	g.POST("/in", func(c echo.Context) error {
		start := time.Now()
		in, err := bind(c)
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		date, err := api.ParseDate(in.Date)
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		ctx := c.Request().Context()

		var moves []ledger.Movement
		if len(in.Items) > 0 {
			moves, err = s.Ledger.StockInBatch(ctx, in.lines(), in.Notes, date)
		} else {
			var mv *ledger.Movement
			mv, err = s.Ledger.StockIn(ctx, ledger.StockInRequest{ItemID: in.ItemID, Quantity: in.Quantity, Notes: in.Notes, Date: date})
			if mv != nil {
				moves = []ledger.Movement{*mv}
			}
		}
		if err != nil {
			return api.Error(c, err)
		}
		s.Changed(ctx, touched(moves)...)
		return respond(c, start, moves)
	})

	// POST /api/stock/out
	g.POST("/out", func(c echo.Context) error {
		start := time.Now()
		in, err := bind(c)
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		date, err := api.ParseDate(in.Date)
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		ctx := c.Request().Context()

		var moves []ledger.Movement
		if len(in.Items) > 0 {
			moves, err = s.Ledger.StockOutBatch(ctx, in.lines(), in.Shop, in.Notes, date)
		} else {
			var mv *ledger.Movement
			mv, err = s.Ledger.StockOut(ctx, ledger.StockOutRequest{ItemID: in.ItemID, Quantity: in.Quantity, Notes: in.Notes, Shop: in.Shop, Date: date})
			if mv != nil {
				moves = []ledger.Movement{*mv}
			}
		}
		if err != nil {
			return api.Error(c, err)
		}
		s.Changed(ctx, touched(moves)...)
		return respond(c, start, moves)
	})
}

func bind(c echo.Context) (movementInput, error) {
	var in movementInput
	err := c.Bind(&in)
	return in, err
}

// touched returns each affected item once, in its final state.
func touched(moves []ledger.Movement) []inventoryEntity.Item {
	seen := map[uint]bool{}
	var out []inventoryEntity.Item
	for i := len(moves) - 1; i >= 0; i-- {
		if id := moves[i].Item.ID; id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, moves[i].Item)
		}
	}
	return out
}

func respond(c echo.Context, start time.Time, moves []ledger.Movement) error {
	duration := time.Since(start).Milliseconds()
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
	return c.JSON(http.StatusCreated, echo.Map{
		"movements":           moves,
		"count":               len(moves),
		"request_duration_ms": duration,
	})
}

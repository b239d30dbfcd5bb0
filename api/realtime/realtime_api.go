package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"vitastore.GO/api"
	"vitastore.GO/config"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// StockResponse is what a shop terminal sees before ringing up a sale.
type StockResponse struct {
	SKU       string  `json:"sku"`
	ItemID    uint    `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	Shop      string  `json:"shop,omitempty"`
	SoldToday int     `json:"sold_today"`
}

// getSigningKey returns the shared key shop terminals sign their name with
func getSigningKey() string {
	return config.GetEnv("REALTIME_SIGNING_KEY", "")
}

// Sign returns the hex HMAC-SHA256 of shop under key.
func Sign(shop, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(shop))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyShopSignature validates HMAC-SHA256 signature using constant-time comparison
func verifyShopSignature(shop, signature, key string) bool {
	if key == "" || shop == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(shop))
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(mac.Sum(nil), sig)
}

// startOfDay is midnight today in the app's time zone.
func startOfDay(now time.Time) time.Time {
	if loc, err := time.LoadLocation(config.App().TimeZone); err == nil {
		now = now.In(loc)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// RegisterRealtimeRoutes sets up the lightweight stock lookup for shop terminals
func RegisterRealtimeRoutes(apiGroup *echo.Group, s *api.Services) {
	items := inventoryRepo.NewItemRepository(s.DB)
	txs := inventoryRepo.NewTransactionRepository(s.DB)
	g := apiGroup.Group("/realtime")

	// GET /api/realtime/stock?sku=XXX with optional X-Shop / X-Shop-Sig headers
	g.GET("/stock", func(c echo.Context) error {
		start := time.Now()

		shop := c.Request().Header.Get("X-Shop")
		if key := getSigningKey(); key != "" && shop != "" &&
			!verifyShopSignature(shop, c.Request().Header.Get("X-Shop-Sig"), key) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}

		sku := c.QueryParam("sku")
		if sku == "" {
			return api.BadRequest(c, "sku required")
		}

		var item *inventoryEntity.Item
		var sold int

		// Parallel fetch using errgroup
		eg, ctx := errgroup.WithContext(c.Request().Context())
		eg.Go(func() error {
			var err error
			item, err = items.GetBySKU(ctx, sku)
			return err
		})
		if shop != "" {
			eg.Go(func() error {
				var err error
				sold, err = txs.ShopOutTotal(ctx, sku, shop, startOfDay(start).Local())
				return err
			})
		}
		err := eg.Wait()

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			return api.Error(c, err)
		}

		return c.JSON(http.StatusOK, StockResponse{
			SKU:       sku,
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Status:    item.Status(),
			Price:     item.Price,
			Shop:      shop,
			SoldToday: sold,
		})
	})
}

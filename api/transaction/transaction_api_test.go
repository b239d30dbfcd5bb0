package transaction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"vitastore.GO/api/apitest"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/ledger"
	"vitastore.GO/service/search"
)

type listResponse struct {
	Count        int `json:"count"`
	Transactions []struct {
		ID          uint   `json:"id"`
		Type        string `json:"type"`
		ItemID      uint   `json:"item_id"`
		DisplayName string `json:"display_name"`
		Date        string `json:"date"`
		Shop        string `json:"shop"`
	} `json:"transactions"`
}

func TestTransactionRoutes_ListAndFilters(t *testing.T) {
	db := apitest.DB(t)
	s, _ := apitest.Services(t, db)
	e := apitest.Server(s, RegisterTransactionRoutes)
	ctx := context.Background()

	items := inventoryRepo.NewItemRepository(db)
	a := inventoryEntity.Item{Name: "Vitamin C", SKU: "VC"}
	b := inventoryEntity.Item{Name: "Zinc"}
	for _, it := range []*inventoryEntity.Item{&a, &b} {
		if err := items.Create(ctx, it); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.Ledger.StockIn(ctx, ledger.StockInRequest{ItemID: a.ID, Quantity: 10}); err != nil {
		t.Fatalf("stock in: %v", err)
	}
	if _, err := s.Ledger.StockIn(ctx, ledger.StockInRequest{ItemID: b.ID, Quantity: 3}); err != nil {
		t.Fatalf("stock in: %v", err)
	}
	if _, err := s.Ledger.StockOut(ctx, ledger.StockOutRequest{ItemID: a.ID, Quantity: 2, Shop: "Westlands"}); err != nil {
		t.Fatalf("stock out: %v", err)
	}

	var all listResponse
	res := apitest.Do(e, http.MethodGet, "/api/transactions", nil)
	apitest.Expect(t, res, http.StatusOK)
	apitest.Decode(t, res, &all)
	if all.Count != 3 {
		t.Fatalf("count = %d, want 3", all.Count)
	}
	if all.Transactions[0].Date == "" || all.Transactions[0].DisplayName == "" {
		t.Errorf("first row = %+v", all.Transactions[0])
	}

	cases := []struct {
		query string
		want  int
	}{
		{"?type=OUT", 1},
		{"?item_id=" + strconv.FormatUint(uint64(a.ID), 10), 2},
		{"?limit=1", 1},
		{"?search=westlands", 1},
		{"?search=vc", 2},
	}
	for _, tc := range cases {
		var got listResponse
		res := apitest.Do(e, http.MethodGet, "/api/transactions"+tc.query, nil)
		apitest.Expect(t, res, http.StatusOK)
		apitest.Decode(t, res, &got)
		if got.Count != tc.want {
			t.Errorf("%s: count = %d, want %d", tc.query, got.Count, tc.want)
		}
	}

	apitest.Expect(t, apitest.Do(e, http.MethodGet, "/api/transactions?item_id=x", nil), http.StatusBadRequest)
	apitest.Expect(t, apitest.Do(e, http.MethodGet, "/api/transactions?limit=-3", nil), http.StatusBadRequest)
}

func TestTransactionRoutes_UnknownItem(t *testing.T) {
	db := apitest.DB(t)
	s, _ := apitest.Services(t, db)
	e := apitest.Server(s, RegisterTransactionRoutes)
	ctx := context.Background()

	items := inventoryRepo.NewItemRepository(db)
	it := inventoryEntity.Item{Name: "Gone"}
	if err := items.Create(ctx, &it); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Ledger.StockIn(ctx, ledger.StockInRequest{ItemID: it.ID, Quantity: 1}); err != nil {
		t.Fatalf("stock in: %v", err)
	}
	if err := items.Delete(ctx, it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got listResponse
	res := apitest.Do(e, http.MethodGet, "/api/transactions", nil)
	apitest.Expect(t, res, http.StatusOK)
	apitest.Decode(t, res, &got)
	if got.Count != 1 || got.Transactions[0].DisplayName != inventoryEntity.UnknownItemName {
		t.Errorf("got = %+v, want one %q row", got, inventoryEntity.UnknownItemName)
	}
}

func TestTransactionRoutes_DeleteReverses(t *testing.T) {
	db := apitest.DB(t)
	s, rec := apitest.Services(t, db)
	e := apitest.Server(s, RegisterTransactionRoutes)
	ctx := context.Background()

	items := inventoryRepo.NewItemRepository(db)
	it := inventoryEntity.Item{Name: "Vitamin C", Quantity: 10}
	if err := items.Create(ctx, &it); err != nil {
		t.Fatalf("create: %v", err)
	}
	mv, err := s.Ledger.StockOut(ctx, ledger.StockOutRequest{ItemID: it.ID, Quantity: 4, Shop: "CBD"})
	if err != nil {
		t.Fatalf("stock out: %v", err)
	}
	notified := rec.Len()

	path := "/api/transactions/" + strconv.FormatUint(uint64(mv.Transaction.ID), 10)
	res := apitest.Do(e, http.MethodDelete, path, nil)
	apitest.Expect(t, res, http.StatusOK)
	var body struct {
		NewQuantity      int `json:"new_quantity"`
		RestoredQuantity int `json:"restored_quantity"`
	}
	apitest.Decode(t, res, &body)
	if body.NewQuantity != 10 || body.RestoredQuantity != 4 {
		t.Errorf("body = %+v, want new_quantity 10 restored 4", body)
	}
	if rec.Len() != notified {
		t.Errorf("delete sent a notification")
	}

	apitest.Expect(t, apitest.Do(e, http.MethodDelete, path, nil), http.StatusNotFound)
}

func TestTransactionRoutes_DeleteInAlreadyConsumed(t *testing.T) {
	db := apitest.DB(t)
	s, _ := apitest.Services(t, db)
	e := apitest.Server(s, RegisterTransactionRoutes)
	ctx := context.Background()

	items := inventoryRepo.NewItemRepository(db)
	it := inventoryEntity.Item{Name: "Zinc"}
	if err := items.Create(ctx, &it); err != nil {
		t.Fatalf("create: %v", err)
	}
	in, err := s.Ledger.StockIn(ctx, ledger.StockInRequest{ItemID: it.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("stock in: %v", err)
	}
	if _, err := s.Ledger.StockOut(ctx, ledger.StockOutRequest{ItemID: it.ID, Quantity: 4, Shop: "CBD"}); err != nil {
		t.Fatalf("stock out: %v", err)
	}

	res := apitest.Do(e, http.MethodDelete, "/api/transactions/"+strconv.FormatUint(uint64(in.Transaction.ID), 10), nil)
	apitest.Expect(t, res, http.StatusConflict)
}

// indexRecorder stands in for Elasticsearch and records document writes.
type indexRecorder struct {
	mu   sync.Mutex
	puts []string
}

func (x *indexRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodPut || r.Method == http.MethodPost {
		x.mu.Lock()
		x.puts = append(x.puts, r.URL.Path)
		x.mu.Unlock()
	}
	_, _ = w.Write([]byte(`{"result":"updated"}`))
}

func (x *indexRecorder) paths() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.puts...)
}

func TestTransactionRoutes_DeleteRefreshesDerivedViews(t *testing.T) {
	db := apitest.DB(t)
	s, _ := apitest.Services(t, db)
	es := &indexRecorder{}
	srv := httptest.NewServer(es)
	defer srv.Close()
	idx, err := search.New(srv.URL, "items", db)
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	s.Search = idx
	e := apitest.Server(s, RegisterTransactionRoutes)
	ctx := context.Background()

	it := inventoryEntity.Item{Name: "Magnesium", Quantity: 10, MinStock: 5}
	if err := inventoryRepo.NewItemRepository(db).Create(ctx, &it); err != nil {
		t.Fatalf("create: %v", err)
	}
	mv, err := s.Ledger.StockOut(ctx, ledger.StockOutRequest{ItemID: it.ID, Quantity: 8, Shop: "CBD"})
	if err != nil {
		t.Fatalf("stock out: %v", err)
	}
	if sum, _ := s.Summary.Summarize(ctx); sum.LowStock != 1 {
		t.Fatalf("LowStock = %d, want 1 before delete", sum.LowStock)
	}

	res := apitest.Do(e, http.MethodDelete, "/api/transactions/"+strconv.FormatUint(uint64(mv.Transaction.ID), 10), nil)
	apitest.Expect(t, res, http.StatusOK)

	if sum, _ := s.Summary.Summarize(ctx); sum.LowStock != 0 {
		t.Errorf("LowStock = %d, want 0 after delete", sum.LowStock)
	}
	want := "/items/_doc/" + strconv.FormatUint(uint64(it.ID), 10)
	found := false
	for _, p := range es.paths() {
		if p == want {
			found = true
		}
	}
	if !found {
		t.Errorf("index writes = %v, want %s", es.paths(), want)
	}
}

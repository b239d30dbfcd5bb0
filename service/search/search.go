package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"

	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

// Index mirrors the item catalog into Elasticsearch for fuzzy lookup. The
// database stays the source of truth: hits are resolved back through the
// item repository.
type Index struct {
	client *elasticsearch.Client
	name   string
	items  *inventoryRepo.ItemRepository
}

// Document is what gets indexed per item.
type Document struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

func toDocument(it *inventoryEntity.Item) Document {
	return Document{ID: it.ID, Name: it.Name, SKU: it.SKU, Category: it.Category, Unit: it.Unit}
}

// FromEnv returns nil when ELASTICSEARCH_HOST is unset.
func FromEnv(db *gorm.DB) (*Index, error) {
	host := os.Getenv("ELASTICSEARCH_HOST")
	if host == "" {
		return nil, nil
	}
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "vitastore"
	}
	return New(host, prefix+"_items", db)
}

func New(host, indexName string, db *gorm.DB) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{host}})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Index{client: client, name: indexName, items: inventoryRepo.NewItemRepository(db)}, nil
}

func (x *Index) Name() string {
	return x.name
}

func checkResponse(op string, statusCode int, isError bool, body io.Reader) error {
	if !isError {
		return nil
	}
	b, _ := io.ReadAll(body)
	return fmt.Errorf("elasticsearch %s: status %d: %s", op, statusCode, bytes.TrimSpace(b))
}

// Put indexes or replaces one item.
func (x *Index) Put(ctx context.Context, it *inventoryEntity.Item) error {
	body, err := json.Marshal(toDocument(it))
	if err != nil {
		return err
	}
	res, err := x.client.Index(x.name, bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(strconv.FormatUint(uint64(it.ID), 10)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return checkResponse("index", res.StatusCode, res.IsError(), res.Body)
}

// Remove deletes one item; a missing document is not an error.
func (x *Index) Remove(ctx context.Context, id uint) error {
	res, err := x.client.Delete(x.name, strconv.FormatUint(uint64(id), 10), x.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return checkResponse("delete", res.StatusCode, res.IsError(), res.Body)
}

// Reindex pushes every item in the catalog through the bulk API and
// returns how many were sent.
func (x *Index) Reindex(ctx context.Context) (int, error) {
	items, err := x.items.List(ctx, inventoryRepo.ItemFilter{})
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range items {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": x.name, "_id": strconv.FormatUint(uint64(items[i].ID), 10)}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		if err := enc.Encode(toDocument(&items[i])); err != nil {
			return 0, err
		}
	}

	res, err := x.client.Bulk(bytes.NewReader(buf.Bytes()), x.client.Bulk.WithContext(ctx), x.client.Bulk.WithRefresh("true"))
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if err := checkResponse("bulk", res.StatusCode, res.IsError(), res.Body); err != nil {
		return 0, err
	}
	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	if out.Errors {
		return 0, fmt.Errorf("elasticsearch bulk: some items failed to index")
	}
	return len(items), nil
}

// Search runs a fuzzy multi_match over name, sku and category and returns
// the matching items from the database in relevance order.
func (x *Index) Search(ctx context.Context, query string, size int) ([]inventoryEntity.Item, error) {
	if size <= 0 {
		size = 20
	}
	body, _ := json.Marshal(map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "sku^2", "category"},
				"fuzziness": "AUTO",
			},
		},
	})

	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.name),
		x.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if err := checkResponse("search", res.StatusCode, res.IsError(), res.Body); err != nil {
		return nil, err
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	found, err := x.items.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	// Hits for items deleted since the last reindex are dropped.
	out := make([]inventoryEntity.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := found[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

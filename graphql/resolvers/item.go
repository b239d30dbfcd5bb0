package resolvers

import (
	"context"
	"errors"
	"log"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "vitastore.GO/graphql/models"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

type ItemsArgs struct {
	Search   *string
	Category *string
	Status   *string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *QueryResolver) Items(ctx context.Context, args ItemsArgs) ([]*gqlmodels.Item, error) {
	items, err := r.itemRepo().List(ctx, inventoryRepo.ItemFilter{
		Search:   deref(args.Search),
		Category: deref(args.Category),
		Status:   deref(args.Status),
	})
	if err != nil {
		return nil, err
	}
	return mapItems(items), nil
}

// Item returns null for an unknown id.
func (r *QueryResolver) Item(ctx context.Context, args struct{ ID gql.ID }) (*gqlmodels.Item, error) {
	id, err := fromID(args.ID)
	if err != nil {
		return nil, nil
	}
	it, err := r.itemRepo().Get(ctx, id)
	if errors.Is(err, inventoryRepo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapItem(it), nil
}

type SearchItemsArgs struct {
	Query string
	Size  int32
}

// SearchItems uses the Elasticsearch index when configured and falls back
// to the catalog's substring search.
func (r *QueryResolver) SearchItems(ctx context.Context, args SearchItemsArgs) ([]*gqlmodels.Item, error) {
	size := int(args.Size)
	if size <= 0 {
		size = 20
	}
	if r.svc.Search != nil {
		items, err := r.svc.Search.Search(ctx, args.Query, size)
		if err == nil {
			return mapItems(items), nil
		}
		log.Printf("graphql search_items: elasticsearch failed, using database: %v", err)
	}
	items, err := r.itemRepo().List(ctx, inventoryRepo.ItemFilter{Search: args.Query})
	if err != nil {
		return nil, err
	}
	if len(items) > size {
		items = items[:size]
	}
	return mapItems(items), nil
}

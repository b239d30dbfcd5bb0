package resolvers

import (
	"context"
	"encoding/json"
	"fmt"

	"vitastore.GO/api"
	gqlregistry "vitastore.GO/graphql/registry"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

// QueryResolver is the single resolver for all Query fields.
// Methods live in item.go, transaction.go and dashboard.go.
// New Query fields: use RegisterSchemaExtension + add method on QueryResolver,
// or use _extension for fully dynamic resolvers.
type QueryResolver struct {
	svc *api.Services
}

func NewQueryResolver(s *api.Services) *QueryResolver {
	return &QueryResolver{svc: s}
}

func (r *QueryResolver) itemRepo() *inventoryRepo.ItemRepository {
	return inventoryRepo.NewItemRepository(r.svc.DB)
}

func (r *QueryResolver) transactionRepo() *inventoryRepo.TransactionRepository {
	return inventoryRepo.NewTransactionRepository(r.svc.DB)
}

// Extension dispatches to registered custom resolvers.
func (r *QueryResolver) Extension(ctx context.Context, args struct {
	Name string
	Args *string
}) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, fmt.Errorf("_extension %s: args must be a JSON object: %w", args.Name, err)
		}
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

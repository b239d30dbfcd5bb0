package resolvers

import (
	"context"
	"fmt"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "vitastore.GO/graphql/models"
	inventoryEntity "vitastore.GO/model/entity/inventory"
	inventoryRepo "vitastore.GO/model/repository/inventory"
)

// TransactionsArgs matches the transactions query arguments (limit defaults to 50 in schema).
type TransactionsArgs struct {
	ItemID *gql.ID
	Type   *string
	Limit  int32
	Search *string
}

func (r *QueryResolver) Transactions(ctx context.Context, args TransactionsArgs) ([]*gqlmodels.Transaction, error) {
	f := inventoryRepo.TransactionFilter{
		Type:   inventoryEntity.TransactionType(deref(args.Type)),
		Limit:  int(args.Limit),
		Search: deref(args.Search),
	}
	if f.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative")
	}
	if args.ItemID != nil {
		id, err := fromID(*args.ItemID)
		if err != nil {
			return nil, fmt.Errorf("invalid item_id %q", *args.ItemID)
		}
		f.ItemID = id
	}
	views, err := r.transactionRepo().List(ctx, f)
	if err != nil {
		return nil, err
	}
	return mapTransactions(views), nil
}

package resolvers

import (
	"context"

	"vitastore.GO/graphql"
	gqlmodels "vitastore.GO/graphql/models"
)

func (r *QueryResolver) Summary(ctx context.Context) (*gqlmodels.Summary, error) {
	s, err := r.svc.Summary.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return mapSummary(s), nil
}

// ExpiringItems is evaluated against the request's As-Of day.
func (r *QueryResolver) ExpiringItems(ctx context.Context) ([]*gqlmodels.ExpiringItem, error) {
	items, err := r.svc.Summary.ExpiringItems(ctx, graphql.AsOfFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return mapExpiring(items), nil
}

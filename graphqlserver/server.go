package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"vitastore.GO/api"
	"vitastore.GO/graphql"
	"vitastore.GO/graphql/resolvers"
)

// NewSchema parses base schema + extensions over a resolver backed by s.
func NewSchema(s *api.Services) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), resolvers.NewQueryResolver(s), gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}

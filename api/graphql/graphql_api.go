package graphql

import (
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
	"vitastore.GO/core/auth"
	graphqlpkg "vitastore.GO/graphql"
	"vitastore.GO/graphqlserver"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

// RegisterGraphQLRoutes mounts /graphql behind the API auth and a public /playground.
func RegisterGraphQLRoutes(e *echo.Echo, s *api.Services) {
	schema, err := graphqlserver.NewSchema(s)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	registerRoutes(e, schema, auth.Middleware())
}

// RegisterGraphQLRoutesWithSchema registers /graphql with a custom schema and no auth (for tests).
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *graphql.Schema) {
	registerRoutes(e, schema)
}

func registerRoutes(e *echo.Echo, schema *graphql.Schema, mw ...echo.MiddlewareFunc) {
	h := echo.WrapHandler(asOfMiddleware(graphqlserver.Handler(schema)))
	e.POST("/graphql", h, mw...)
	e.GET("/graphql", h, mw...)
	e.GET("/playground", echo.WrapHandler(playgroundHandler()))
}

func asOfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t, ok := graphqlpkg.GetAsOf(r); ok {
			r = r.WithContext(graphqlpkg.WithAsOf(r.Context(), t))
		}
		next.ServeHTTP(w, r)
	})
}

func playgroundHandler() http.Handler {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>VitaStore GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init({ endpoint: '/graphql' });
	})</script>
</body>
</html>`
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	})
}

package graphql

import (
	"context"
	"net/http"
	"time"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyAsOf contextKey = "asOf"

// The reference day for expiry windows. Resolved from: As-Of header > __asOf query param.
const (
	HeaderAsOf     = "As-Of"
	QueryParamAsOf = "__asOf"
)

// WithAsOf attaches the reference time to ctx.
func WithAsOf(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, CtxKeyAsOf, t)
}

// AsOfFromContext returns the request's reference time, or now.
func AsOfFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(CtxKeyAsOf).(time.Time); ok {
		return v
	}
	return time.Now()
}

// GetAsOf reads a YYYY-MM-DD reference day from the request. ok is false
// when none is given or it does not parse.
func GetAsOf(r *http.Request) (time.Time, bool) {
	v := r.Header.Get(HeaderAsOf)
	if v == "" {
		v = r.URL.Query().Get(QueryParamAsOf)
	}
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

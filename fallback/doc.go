// Package fallback keeps last-good values for degraded operation.
//
// A Store remembers the most recent successful result per key, with an
// optional TTL. Wrap an operation with Record so successes refresh the
// store, and hand Store.Producer to a circuit breaker as its fallback:
//
//	store := fallback.New[[]Quote](5 * time.Minute)
//	br := breaker.New(breaker.Config{
//	    Name:     "quotes",
//	    Fallback: store.Producer("EUR/USD"),
//	})
//	quotes, err := breaker.Do[[]Quote](ctx, br,
//	    fallback.Record(store, "EUR/USD", fetchQuotes))
package fallback

// Package descarteslabs provides Go clients for the Descartes Labs platform
// APIs, starting with the Places geospatial lookup and statistics service.
//
// Every client shares the same session core:
//
//   - A process-wide AuthContext owning the bearer token; rotating it is
//     observed by all services on their next request
//   - Automatic retries with session-fixed exponential backoff for transient
//     statuses and connection failures
//   - A closed taxonomy of API errors classified from HTTP status codes
//   - A bounded TTL + LRU response cache keyed by operation fingerprint
//   - Prometheus metrics and lightweight structured debug logging
//
// Typical usage:
//
//	auth := descarteslabs.NewAuthContext(token)
//	places, err := descarteslabs.NewPlaces(auth,
//	    descarteslabs.WithCacheTTL(10*time.Minute),
//	    descarteslabs.WithMetrics(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	kansas, err := places.Shape(ctx, "north-america_united-states_kansas", nil)
//
// A single client instance is safe for concurrent use. Retries are invisible
// to callers except as latency; once they are exhausted the terminal error is
// returned unmodified and never cached.
package descarteslabs

package descarteslabs

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"time"
)

const (
	// DefaultPlacesURL is used when neither an option nor the environment
	// provides a backend URL.
	DefaultPlacesURL = "https://platform-services.descarteslabs.com/waldo/dev"
	// PlacesURLEnvVar overrides the backend URL when set.
	PlacesURLEnvVar = "DESCARTESLABS_PLACES_URL"

	// DefaultCacheSize bounds the response cache.
	DefaultCacheSize = 10
	// DefaultCacheTTL is how long cached responses stay live.
	DefaultCacheTTL = 10 * time.Minute
)

// Places is the client for the places lookup and statistics service. It
// resolves place-name slugs to geometries and associated time series.
// Reference-data lookups (Find, Shape, Prefix) are memoized through the
// response cache; inherently fresh calls like Random bypass it.
type Places struct {
	*Service

	cacheSize int
	cacheTTL  time.Duration
	clock     func() time.Time
	cache     *ResponseCache
}

// NewPlaces creates a Places client observing the given auth context.
func NewPlaces(auth *AuthContext, opts ...Option) (*Places, error) {
	baseURL := os.Getenv(PlacesURLEnvVar)
	if baseURL == "" {
		baseURL = DefaultPlacesURL
	}

	p := &Places{
		Service:   NewService(baseURL, auth),
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
	}
	// Shape payloads are large; the read timeout is wider than the service
	// default.
	p.timeout = Timeout{Connect: 9500 * time.Millisecond, Read: 120 * time.Second}

	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	p.cache = newResponseCache(p.cacheSize, p.cacheTTL, p.clock)
	return p, nil
}

// Placetypes lists the known place types, most general first.
func (p *Places) Placetypes(ctx context.Context) ([]string, error) {
	body, err := p.get(ctx, "/placetypes", nil)
	if err != nil {
		return nil, err
	}
	var placetypes []string
	if err := json.Unmarshal(body, &placetypes); err != nil {
		return nil, err
	}
	return placetypes, nil
}

// RandomOptions adjust Random results.
type RandomOptions struct {
	// Geom selects the shape resolution: low (default), medium or high.
	Geom string
	// Placetype restricts results to one place type.
	Placetype string
}

// Random returns a random place as GeoJSON. Never cached.
func (p *Places) Random(ctx context.Context, opts *RandomOptions) (json.RawMessage, error) {
	params := url.Values{}
	geom := "low"
	if opts != nil && opts.Geom != "" {
		geom = opts.Geom
	}
	params.Set("geom", geom)
	if opts != nil && opts.Placetype != "" {
		params.Set("placetype", opts.Placetype)
	}
	return p.get(ctx, "/random", params)
}

// FindOptions filter Find results.
type FindOptions struct {
	// Placetype restricts candidates to one place type.
	Placetype string
}

// Find returns candidate places for a full or partial slug path. Results are
// memoized.
func (p *Places) Find(ctx context.Context, path string, opts *FindOptions) ([]Place, error) {
	params := url.Values{}
	kwargs := map[string]string{}
	if opts != nil && opts.Placetype != "" {
		params.Set("placetype", opts.Placetype)
		kwargs["placetype"] = opts.Placetype
	}

	body, err := p.cached(ctx, "find", "/find/"+url.PathEscape(path), params, []string{path}, kwargs)
	if err != nil {
		return nil, err
	}
	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// ShapeOptions adjust Shape results.
type ShapeOptions struct {
	// Output selects the geometry format; geojson is the default.
	Output string
	// Geom selects the shape resolution: low (default), medium or high.
	Geom string
}

// Shape returns the geometry for one slug as a GeoJSON Feature. Results are
// memoized.
func (p *Places) Shape(ctx context.Context, slug string, opts *ShapeOptions) (*Feature, error) {
	output, geom := "geojson", "low"
	if opts != nil && opts.Output != "" {
		output = opts.Output
	}
	if opts != nil && opts.Geom != "" {
		geom = opts.Geom
	}

	params := url.Values{}
	params.Set("geom", geom)
	kwargs := map[string]string{"output": output, "geom": geom}

	body, err := p.cached(ctx, "shape", "/shape/"+url.PathEscape(slug)+"."+output, params, []string{slug}, kwargs)
	if err != nil {
		return nil, err
	}
	var feature Feature
	if err := json.Unmarshal(body, &feature); err != nil {
		return nil, err
	}
	return &feature, nil
}

// PrefixOptions adjust Prefix results.
type PrefixOptions struct {
	// Output selects geojson (default) or topojson.
	Output string
	// Placetype restricts results to one place type.
	Placetype string
	// Geom selects the shape resolution: low (default), medium or high.
	Geom string
}

// Prefix returns all places whose slug starts with the given prefix as a
// FeatureCollection. Results are memoized.
func (p *Places) Prefix(ctx context.Context, slug string, opts *PrefixOptions) (*FeatureCollection, error) {
	output, geom := "geojson", "low"
	if opts != nil && opts.Output != "" {
		output = opts.Output
	}
	if opts != nil && opts.Geom != "" {
		geom = opts.Geom
	}

	params := url.Values{}
	params.Set("geom", geom)
	kwargs := map[string]string{"output": output, "geom": geom}
	if opts != nil && opts.Placetype != "" {
		params.Set("placetype", opts.Placetype)
		kwargs["placetype"] = opts.Placetype
	}

	body, err := p.cached(ctx, "prefix", "/prefix/"+url.PathEscape(slug)+"."+output, params, []string{slug}, kwargs)
	if err != nil {
		return nil, err
	}
	var collection FeatureCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// Sources lists the available data sources.
func (p *Places) Sources(ctx context.Context) (json.RawMessage, error) {
	return p.get(ctx, "/sources", nil)
}

// Categories lists the available data categories.
func (p *Places) Categories(ctx context.Context) (json.RawMessage, error) {
	return p.get(ctx, "/categories", nil)
}

// Metrics lists the available metrics.
func (p *Places) Metrics(ctx context.Context) (json.RawMessage, error) {
	return p.get(ctx, "/metrics", nil)
}

// DataOptions filter Data results.
type DataOptions struct {
	Source   string
	Category string
	Metric   string
	Date     string
	// Placetype restricts results to one place type; county when empty.
	Placetype string
}

// Data returns all values under a prefix for one point in time.
func (p *Places) Data(ctx context.Context, slug string, opts *DataOptions) (json.RawMessage, error) {
	params := url.Values{}
	placetype := "county"
	if opts != nil {
		setIfPresent(params, "source", opts.Source)
		setIfPresent(params, "category", opts.Category)
		setIfPresent(params, "metric", opts.Metric)
		setIfPresent(params, "date", opts.Date)
		if opts.Placetype != "" {
			placetype = opts.Placetype
		}
	}
	params.Set("placetype", placetype)
	return p.get(ctx, "/data/"+url.PathEscape(slug), params)
}

// StatisticsOptions filter Statistics results.
type StatisticsOptions struct {
	Source   string
	Category string
	Metric   string
}

// Statistics returns a time series for one place.
func (p *Places) Statistics(ctx context.Context, slug string, opts *StatisticsOptions) (json.RawMessage, error) {
	params := url.Values{}
	if opts != nil {
		setIfPresent(params, "source", opts.Source)
		setIfPresent(params, "category", opts.Category)
		setIfPresent(params, "metric", opts.Metric)
	}
	return p.get(ctx, "/statistics/"+url.PathEscape(slug), params)
}

// ValueOptions filter Value results. The slice fields are sent as repeated
// query parameters.
type ValueOptions struct {
	Sources    []string
	Categories []string
	Metrics    []string
	Date       string
}

// Value returns point values for one place.
func (p *Places) Value(ctx context.Context, slug string, opts *ValueOptions) (json.RawMessage, error) {
	params := url.Values{}
	if opts != nil {
		for _, source := range opts.Sources {
			params.Add("source", source)
		}
		for _, category := range opts.Categories {
			params.Add("category", category)
		}
		for _, metric := range opts.Metrics {
			params.Add("metric", metric)
		}
		setIfPresent(params, "date", opts.Date)
	}
	return p.get(ctx, "/value/"+url.PathEscape(slug), params)
}

// get issues one GET through the current session.
func (p *Places) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	sess, err := p.Session()
	if err != nil {
		return nil, err
	}
	return sess.Get(ctx, path, params)
}

// cached memoizes a GET under the operation fingerprint. Errors propagate and
// are never stored.
func (p *Places) cached(ctx context.Context, op, path string, params url.Values, args []string, kwargs map[string]string) (json.RawMessage, error) {
	key := Fingerprint(op, args, kwargs)

	hit := true
	body, err := p.cache.GetOrCompute(key, func() (json.RawMessage, error) {
		hit = false
		return p.get(ctx, path, params)
	})
	if err != nil {
		p.metrics.RecordCacheMiss(op)
		return nil, err
	}

	if hit {
		p.metrics.RecordCacheHit(op)
	} else {
		p.metrics.RecordCacheMiss(op)
		p.metrics.RecordCacheSize("places", p.cache.Len())
	}
	if p.debug != nil && p.debug.Enabled && p.debug.LogCache && p.logger != nil {
		p.logger.Debug("Cache lookup", "operation", op, "key", key, "hit", hit)
	}
	return body, nil
}

func setIfPresent(params url.Values, name, value string) {
	if value != "" {
		params.Set(name, value)
	}
}

// Package fetch issues the single upstream GET of a render cycle and caches
// the raw response. It never retries: any fatal condition is terminal for
// the render, and the verbatim upstream body travels with the error so the
// caller can surface it for diagnosis.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/expahub/exchange-funnel/internal/metrics"
)

// Bucket is one time-windowed count from the upstream histogram aggregation.
type Bucket struct {
	KeyAsString string `json:"key_as_string"`
	DocCount    int    `json:"doc_count"`
}

// BucketList is the sub-object holding a stage's buckets. Buckets stays nil
// when the upstream omits the array; callers treat that as zero rows.
type BucketList struct {
	Buckets []Bucket `json:"buckets"`
}

// StageDoc is the per-stage-key object. Which sub-object applies depends on
// the stage key (see funnel.Normalize).
type StageDoc struct {
	Applications *BucketList `json:"applications"`
	People       *BucketList `json:"people"`
}

// Analytics is the decoded top-level "analytics" mapping.
type Analytics map[string]StageDoc

// Payload is one fetched snapshot: the verbatim body plus its decoded
// analytics. Cached snapshots are returned unchanged, byte for byte.
type Payload struct {
	Raw       []byte
	Analytics Analytics
}

// TransportError is a non-2xx upstream response.
type TransportError struct {
	Status int
	Body   []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analytics API returned status %d: %s", e.Status, e.Body)
}

// SchemaError is a 2xx response missing the top-level "analytics" key.
type SchemaError struct {
	Body []byte
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("analytics API response has no 'analytics' key: %s", e.Body)
}

type Fetcher struct {
	c     HTTPClient
	cache *Cache
	url   string
	log   *slog.Logger
}

func NewFetcher(c HTTPClient, cache *Cache, apiURL string, log *slog.Logger) *Fetcher {
	return &Fetcher{c: c, cache: cache, url: apiURL, log: log}
}

// Fetch issues one GET with the resolved parameters plus the access token.
// A cache hit inside the TTL window bypasses the network entirely.
func (f *Fetcher) Fetch(ctx context.Context, token string, v url.Values) (Payload, error) {
	q := cloneValues(v)
	q.Set("access_token", token)
	query := q.Encode()

	key := cacheKey(query)
	if p, ok := f.cache.Get(key); ok {
		metrics.CacheHits.Inc()
		f.log.Debug("analytics cache hit", slog.String("key", key))
		return p, nil
	}
	metrics.CacheMisses.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url+"?"+query, nil)
	if err != nil {
		return Payload{}, errors.Wrap(err, "build analytics request")
	}
	resp, err := f.c.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("network_error").Inc()
		return Payload{}, errors.Wrap(err, "call analytics API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("network_error").Inc()
		return Payload{}, errors.Wrap(err, "read analytics response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return Payload{}, &TransportError{Status: resp.StatusCode, Body: body}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.UpstreamRequests.WithLabelValues("schema_error").Inc()
		return Payload{}, &SchemaError{Body: body}
	}
	raw, ok := envelope["analytics"]
	if !ok {
		metrics.UpstreamRequests.WithLabelValues("schema_error").Inc()
		return Payload{}, &SchemaError{Body: body}
	}
	var analytics Analytics
	if err := json.Unmarshal(raw, &analytics); err != nil {
		metrics.UpstreamRequests.WithLabelValues("schema_error").Inc()
		return Payload{}, &SchemaError{Body: body}
	}
	metrics.UpstreamRequests.WithLabelValues("ok").Inc()

	p := Payload{Raw: body, Analytics: analytics}
	f.cache.Put(key, p)
	return p, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

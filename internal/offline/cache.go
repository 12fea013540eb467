package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheName is the name of the current asset cache.
const DefaultCacheName = "fuel-calc-v2"

// SyncHistoryTag is the background sync tag of the calculation history.
const SyncHistoryTag = "sync-historico"

// StaticAssets are stored on install.
var StaticAssets = []string{
	"/",
	"/index.html",
	"/style.css",
	"/script.js",
	"/manifest.json",
	"/icon-192.svg",
	"/icon-512.svg",
}

var navigationFallbacks = []string{"/index.html", "/"}

// Response is a cached network response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) write(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.Status)
	w.Write(r.Body)
}

// Cache is a set of named response caches in front of an asset origin.
// Lookups are cache-first; successful GET responses from the origin are
// stored in the current cache.
type Cache struct {
	name       string
	origin     *url.URL
	httpClient *http.Client
	logger     *zap.Logger

	mu     sync.RWMutex
	caches map[string]map[string]*Response
}

// New creates a Cache named name in front of origin.
func New(name, origin string, httpClient *http.Client, logger *zap.Logger) (*Cache, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse asset origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("asset origin %q must be an absolute URL", origin)
	}
	if name == "" {
		name = DefaultCacheName
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Cache{
		name:       name,
		origin:     u,
		httpClient: httpClient,
		logger:     logger,
		caches:     map[string]map[string]*Response{},
	}, nil
}

// Name returns the name of the current cache.
func (c *Cache) Name() string {
	return c.name
}

// Install fetches every asset into the current cache. Either all assets are
// stored or none is.
func (c *Cache) Install(ctx context.Context, assets []string) error {
	fetched := make([]*Response, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		g.Go(func() error {
			resp, err := c.fetch(gctx, http.MethodGet, asset, nil, nil)
			if err != nil {
				return err
			}
			if resp.Status != http.StatusOK {
				return fmt.Errorf("failed to install %s: status %d", asset, resp.Status)
			}
			fetched[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to install offline cache %s: %w", c.name, err)
	}

	for i, asset := range assets {
		c.Put(c.name, asset, fetched[i])
	}
	c.logger.Info("Offline cache installed", zap.String("cache", c.name), zap.Int("assets", len(assets)))
	return nil
}

// Activate deletes every cache whose name differs from the current one and
// returns the deleted names.
func (c *Cache) Activate() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var purged []string
	for name := range c.caches {
		if name != c.name {
			delete(c.caches, name)
			purged = append(purged, name)
		}
	}
	if len(purged) > 0 {
		c.logger.Info("Purged stale offline caches", zap.Strings("caches", purged))
	}
	return purged
}

// Names returns the names of the existing caches.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.caches))
	for name := range c.caches {
		names = append(names, name)
	}
	return names
}

// Put stores resp under key in the named cache.
func (c *Cache) Put(cacheName, key string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.caches[cacheName]
	if !ok {
		entries = map[string]*Response{}
		c.caches[cacheName] = entries
	}
	entries[key] = resp
}

// Match looks key up across all caches, current cache first.
func (c *Cache) Match(key string) (*Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if resp, ok := c.caches[c.name][key]; ok {
		return resp, true
	}
	for name, entries := range c.caches {
		if name == c.name {
			continue
		}
		if resp, ok := entries[key]; ok {
			return resp, true
		}
	}
	return nil, false
}

// Sync handles a background sync request. Only the history tag is known and
// it has nothing to upload yet.
func (c *Cache) Sync(ctx context.Context, tag string) error {
	if tag != SyncHistoryTag {
		return fmt.Errorf("unknown sync tag %q", tag)
	}
	c.logger.Info("Background sync requested", zap.String("tag", tag))
	return ctx.Err()
}

// ServeHTTP answers from the cache, falling back to the origin. When the
// origin is unreachable for a page navigation the cached root document is
// served instead.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := requestKey(r)
	if r.Method == http.MethodGet {
		if resp, ok := c.Match(key); ok {
			resp.write(w)
			return
		}
	}

	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
	}
	resp, err := c.fetch(r.Context(), r.Method, key, r.Header, body)
	if err != nil {
		c.logger.Warn("Asset fetch failed", zap.String("path", key), zap.Error(err))
		if isNavigation(r) {
			for _, fallback := range navigationFallbacks {
				if cached, ok := c.Match(fallback); ok {
					cached.write(w)
					return
				}
			}
		}
		http.Error(w, "offline", http.StatusServiceUnavailable)
		return
	}

	if r.Method == http.MethodGet && resp.Status == http.StatusOK {
		c.Put(c.name, key, resp)
	}
	resp.write(w)
}

func (c *Cache) fetch(ctx context.Context, method, key string, header http.Header, body []byte) (*Response, error) {
	target := c.origin.ResolveReference(&url.URL{Path: pathOf(key), RawQuery: queryOf(key)})

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for _, h := range []string{"Accept", "Accept-Language", "Content-Type"} {
		if v := header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &Response{Status: resp.StatusCode, Header: http.Header{}, Body: data}
	for _, h := range []string{"Content-Type", "Cache-Control", "Last-Modified", "ETag"} {
		if v := resp.Header.Get(h); v != "" {
			out.Header.Set(h, v)
		}
	}
	return out, nil
}

func requestKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

func pathOf(key string) string {
	p, _, _ := strings.Cut(key, "?")
	return p
}

func queryOf(key string) string {
	_, q, _ := strings.Cut(key, "?")
	return q
}

func isNavigation(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

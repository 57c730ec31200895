package services

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/cmsops/optimove-export/pkg/logger"
	"github.com/cmsops/optimove-export/pkg/metrics"
)

// BuildPreviewURL builds the CMS preview URL for an item. The four preview
// query parameters are added on top of whatever path and query the site
// base URL already carries. An empty lang defaults to "en".
func BuildPreviewURL(siteBaseURL, itemID, lang string) (string, error) {
	if lang == "" {
		lang = "en"
	}

	u, err := url.Parse(siteBaseURL)
	if err != nil {
		return "", &models.InvalidURLError{URL: siteBaseURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &models.InvalidURLError{URL: siteBaseURL}
	}

	q := u.Query()
	q.Set("sc_itemid", itemID)
	q.Set("sc_lang", lang)
	q.Set("sc_mode", "preview")
	q.Set("mailExportMode", "true")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// PreviewCache is a bounded LRU cache of rendered preview HTML keyed by
// "itemID|lang".
type PreviewCache struct {
	mu      sync.Mutex
	max     int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key  string
	html string
}

func NewPreviewCache(max int) *PreviewCache {
	if max <= 0 {
		max = 256
	}
	return &PreviewCache{
		max:     max,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *PreviewCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).html, true
}

func (c *PreviewCache) Put(key, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).html = html
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, html: html})
	if c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Reset empties the cache. Tests use this for deterministic state.
func (c *PreviewCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// PreviewRequest identifies one preview rendering. Binding names the UI
// slot issuing the request: a newer request for the same binding cancels
// the older one. Cookie is the operator's cookie header, forwarded so the
// CMS renders with the operator's credentials.
type PreviewRequest struct {
	Binding     string
	SiteBaseURL string
	ItemID      string
	Lang        string
	Cookie      string
}

// previewFlight is one in-flight preview fetch, shared by every caller
// waiting on the same cache key.
type previewFlight struct {
	key    string
	refs   int
	cancel context.CancelFunc
	done   chan struct{}
	html   string
	err    error
}

// PreviewService fetches and caches rendered preview HTML. Concurrent
// requests for the same key share one upstream fetch; a newer request for
// the same binding cancels the stale one.
type PreviewService struct {
	cache   *PreviewCache
	client  *http.Client
	timeout time.Duration
	metrics *metrics.Metrics

	mu       sync.Mutex
	inflight map[string]*previewFlight
	bindings map[string]*previewFlight
}

func NewPreviewService(cache *PreviewCache, timeout time.Duration, m *metrics.Metrics) *PreviewService {
	if cache == nil {
		cache = NewPreviewCache(0)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PreviewService{
		cache:    cache,
		client:   &http.Client{},
		timeout:  timeout,
		metrics:  m,
		inflight: make(map[string]*previewFlight),
		bindings: make(map[string]*previewFlight),
	}
}

// Cache exposes the injected cache, mainly for tests.
func (s *PreviewService) Cache() *PreviewCache {
	return s.cache
}

// Render returns the rendered HTML for one item+language. An empty item id
// means there is nothing to preview and returns immediately. Cache hits
// never touch the network. A cancelled fetch surfaces context.Canceled,
// which callers are expected to swallow.
func (s *PreviewService) Render(ctx context.Context, req PreviewRequest) (string, error) {
	if req.ItemID == "" {
		return "", nil
	}
	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	key := req.ItemID + "|" + lang
	if html, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.PreviewCacheHitTotal.Inc()
		}
		return html, nil
	}

	previewURL, err := BuildPreviewURL(req.SiteBaseURL, req.ItemID, lang)
	if err != nil {
		return "", err
	}

	fl := s.join(req.Binding, key, previewURL, req.Cookie)

	select {
	case <-fl.done:
		return fl.html, fl.err
	case <-ctx.Done():
		s.Release(req.Binding)
		return "", ctx.Err()
	}
}

// Prefetch warms the cache for an item+language without blocking. It joins
// an already-pending fetch for the same key instead of duplicating it.
func (s *PreviewService) Prefetch(req PreviewRequest) {
	if req.ItemID == "" {
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	key := req.ItemID + "|" + lang
	if _, ok := s.cache.Get(key); ok {
		return
	}

	previewURL, err := BuildPreviewURL(req.SiteBaseURL, req.ItemID, lang)
	if err != nil {
		logger.WithError(err).Warn("prefetch skipped: bad site base URL")
		return
	}

	// No binding: prefetches are never cancelled by newer requests.
	s.join("", key, previewURL, req.Cookie)
}

// Release detaches a binding from its in-flight fetch. The fetch is
// aborted once no caller remains attached to it.
func (s *PreviewService) Release(binding string) {
	if binding == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if fl := s.bindings[binding]; fl != nil {
		s.releaseLocked(fl)
		delete(s.bindings, binding)
	}
}

func (s *PreviewService) join(binding, key, previewURL, cookie string) *previewFlight {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.bindings[binding]; binding != "" && prev != nil {
		if prev.key == key && s.inflight[key] == prev {
			return prev
		}
		// Superseded: the older request loses this caller.
		s.releaseLocked(prev)
		delete(s.bindings, binding)
	}

	if fl := s.inflight[key]; fl != nil {
		fl.refs++
		if binding != "" {
			s.bindings[binding] = fl
		}
		return fl
	}

	fctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	fl := &previewFlight{
		key:    key,
		refs:   1,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.inflight[key] = fl
	if binding != "" {
		s.bindings[binding] = fl
	}

	go s.fetch(fctx, fl, previewURL, cookie)

	return fl
}

func (s *PreviewService) releaseLocked(fl *previewFlight) {
	fl.refs--
	if fl.refs <= 0 {
		fl.cancel()
	}
}

func (s *PreviewService) fetch(ctx context.Context, fl *previewFlight, previewURL, cookie string) {
	defer fl.cancel()

	html, err := s.doFetch(ctx, previewURL, cookie)
	if err == nil {
		s.cache.Put(fl.key, html)
	}

	s.mu.Lock()
	if s.inflight[fl.key] == fl {
		delete(s.inflight, fl.key)
	}
	fl.html = html
	fl.err = err
	s.mu.Unlock()

	if s.metrics != nil {
		switch {
		case err == nil:
			s.metrics.PreviewFetchTotal.WithLabelValues("success").Inc()
		case errors.Is(err, context.Canceled):
			s.metrics.PreviewFetchTotal.WithLabelValues("cancelled").Inc()
		default:
			s.metrics.PreviewFetchTotal.WithLabelValues("error").Inc()
		}
	}

	close(fl.done)
}

func (s *PreviewService) doFetch(ctx context.Context, previewURL, cookie string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create preview request: %w", err)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}
		return "", fmt.Errorf("preview request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("Preview HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read preview body: %w", err)
	}

	return string(body), nil
}

package css

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 5 * time.Second

// Options configures a Manager. Zero values select the HTTP fetcher and
// the default timeout.
type Options struct {
	Fetcher Fetcher
	Timeout time.Duration
}

// Manager is a URL-keyed stylesheet cache with get-or-fetch semantics.
// A successful fetch+compile is memoized forever; a failure memoizes
// nothing, so the next request retries.
type Manager struct {
	fetcher Fetcher
	timeout time.Duration

	mu     sync.Mutex
	sheets map[string]*Stylesheet

	group singleflight.Group
}

// NewManager creates an isolated manager. Most callers want the shared
// process-wide manager from Sheets; isolated managers serve tests and
// embedders with their own fetch policy.
func NewManager(opts Options) *Manager {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = HTTPFetcher(nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Manager{
		fetcher: fetcher,
		timeout: timeout,
		sheets:  make(map[string]*Stylesheet),
	}
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// Sheets returns the process-wide stylesheet manager, created on first
// use.
func Sheets() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(Options{})
	})
	return globalManager
}

// Ensure returns the compiled stylesheet for url, fetching and compiling
// it on first use. Concurrent calls for the same URL share one in-flight
// fetch and all receive its result. On failure nothing is cached and the
// shared error is returned; callers are expected to degrade (render
// without the shared sheet) rather than fail.
//
// ctx bounds this caller's wait only. The fetch itself runs detached
// with the manager's timeout, so one caller giving up does not cancel
// the flight for the others.
func (m *Manager) Ensure(ctx context.Context, url string) (*Stylesheet, error) {
	if url == "" {
		return nil, fmt.Errorf("empty stylesheet url")
	}
	if sheet, ok := m.Peek(url); ok {
		return sheet, nil
	}

	ch := m.group.DoChan(url, func() (any, error) {
		// A finished flight may have filled the cache while this call
		// was queued behind it.
		if sheet, ok := m.Peek(url); ok {
			return sheet, nil
		}
		fctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		text, err := m.fetcher(fctx, url)
		if err != nil {
			log.Printf("css: fetching %s failed: %v", url, err)
			return nil, err
		}
		sheet, err := Parse(text)
		if err != nil {
			log.Printf("css: compiling %s failed: %v", url, err)
			return nil, err
		}
		m.mu.Lock()
		m.sheets[url] = sheet
		m.mu.Unlock()
		return sheet, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Stylesheet), nil
	}
}

// Peek returns the memoized sheet for url without fetching.
func (m *Manager) Peek(url string) (*Stylesheet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sheet, ok := m.sheets[url]
	return sheet, ok
}

// Preload seeds the cache with an already compiled sheet.
func (m *Manager) Preload(url string, sheet *Stylesheet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[url] = sheet
}

// Reset drops every cached sheet. Tests use this for isolation.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets = make(map[string]*Stylesheet)
}

// Ensure fetches through the process-wide manager.
func Ensure(ctx context.Context, url string) (*Stylesheet, error) {
	return Sheets().Ensure(ctx, url)
}

// Preload seeds the process-wide manager.
func Preload(url string, sheet *Stylesheet) {
	Sheets().Preload(url, sheet)
}

// Reset clears the process-wide manager.
func Reset() {
	Sheets().Reset()
}

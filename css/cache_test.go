package css

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func countingFetcher(calls *atomic.Int32, text string, delay time.Duration) Fetcher {
	return func(ctx context.Context, url string) (string, error) {
		calls.Add(1)
		if delay > 0 {
			time.Sleep(delay)
		}
		return text, nil
	}
}

func TestEnsureFetchesAndMemoizes(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(Options{Fetcher: countingFetcher(&calls, "p { margin: 0; }", 0)})

	sheet, err := m.Ensure(context.Background(), "https://example.com/shared.css")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if len(sheet.Rules) != 1 || sheet.Rules[0].Selector != "p" {
		t.Errorf("unexpected sheet: %+v", sheet.Rules)
	}

	again, err := m.Ensure(context.Background(), "https://example.com/shared.css")
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if again != sheet {
		t.Error("memoized call should return the same sheet object")
	}
	if calls.Load() != 1 {
		t.Errorf("fetcher ran %d times, want 1", calls.Load())
	}
}

func TestEnsureSharesOneFlightAcrossConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(Options{Fetcher: countingFetcher(&calls, "p { margin: 0; }", 20*time.Millisecond)})

	const callers = 5
	var wg sync.WaitGroup
	sheets := make([]*Stylesheet, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sheets[i], errs[i] = m.Ensure(context.Background(), "https://example.com/shared.css")
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetcher ran %d times for %d concurrent callers, want 1", calls.Load(), callers)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d error: %v", i, errs[i])
		}
		if sheets[i] != sheets[0] {
			t.Errorf("caller %d received a different sheet object", i)
		}
	}
}

func TestEnsureFailureIsNotCached(t *testing.T) {
	var calls atomic.Int32
	failErr := errors.New("network down")
	m := NewManager(Options{Fetcher: func(ctx context.Context, url string) (string, error) {
		if calls.Add(1) == 1 {
			return "", failErr
		}
		return "p { margin: 0; }", nil
	}})

	if _, err := m.Ensure(context.Background(), "u"); !errors.Is(err, failErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, ok := m.Peek("u"); ok {
		t.Fatal("failed fetch must not be cached")
	}

	sheet, err := m.Ensure(context.Background(), "u")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if sheet == nil || calls.Load() != 2 {
		t.Errorf("retry should refetch: calls=%d sheet=%v", calls.Load(), sheet)
	}
}

func TestEnsureCompileFailureIsNotCached(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(Options{Fetcher: func(ctx context.Context, url string) (string, error) {
		if calls.Add(1) == 1 {
			return "p { color: red", nil
		}
		return "p { color: red; }", nil
	}})

	if _, err := m.Ensure(context.Background(), "u"); err == nil {
		t.Fatal("expected compile error")
	}
	if _, err := m.Ensure(context.Background(), "u"); err != nil {
		t.Fatalf("retry after compile failure failed: %v", err)
	}
}

func TestEnsureEmptyURL(t *testing.T) {
	m := NewManager(Options{Fetcher: countingFetcher(new(atomic.Int32), "", 0)})
	if _, err := m.Ensure(context.Background(), ""); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestEnsureHonorsCallerContext(t *testing.T) {
	release := make(chan struct{})
	m := NewManager(Options{Fetcher: func(ctx context.Context, url string) (string, error) {
		<-release
		return "p { margin: 0; }", nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := m.Ensure(ctx, "u")
	close(release)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPreloadAndReset(t *testing.T) {
	m := NewManager(Options{Fetcher: func(ctx context.Context, url string) (string, error) {
		return "", fmt.Errorf("should not fetch")
	}})
	sheet := &Stylesheet{Source: "p{}"}
	m.Preload("u", sheet)

	got, err := m.Ensure(context.Background(), "u")
	if err != nil || got != sheet {
		t.Errorf("Ensure after Preload = %v, %v", got, err)
	}

	m.Reset()
	if _, ok := m.Peek("u"); ok {
		t.Error("Reset should drop entries")
	}
}

func TestSheetsSingleton(t *testing.T) {
	if Sheets() != Sheets() {
		t.Error("Sheets should return the same manager")
	}
}

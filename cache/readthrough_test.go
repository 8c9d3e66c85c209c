package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mapStore is a minimal in-test Store. TTLs are recorded but not enforced;
// expiry behaviour is covered by the real backends in internal/cacheinfra.
type mapStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	gets    int
	sets    int
}

func newMapStore() *mapStore {
	return &mapStore{entries: map[string][]byte{}}
}

func (s *mapStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *mapStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

func (s *mapStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func TestReadThrough_MissThenHit(t *testing.T) {
	store := newMapStore()
	reader := NewReader(store, time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (string, error) {
		loads++
		return "payload", nil
	}

	v, hit, err := ReadThrough(ctx, reader, "k", loader)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if hit {
		t.Errorf("expected first read to miss")
	}
	if v != "payload" {
		t.Errorf("expected 'payload' but got: %q", v)
	}

	v, hit, err = ReadThrough(ctx, reader, "k", loader)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if !hit {
		t.Errorf("expected second read to hit")
	}
	if v != "payload" {
		t.Errorf("expected 'payload' but got: %q", v)
	}
	if loads != 1 {
		t.Errorf("expected exactly one loader call but got: %d", loads)
	}
}

func TestReadThrough_LoaderErrorNotCached(t *testing.T) {
	store := newMapStore()
	reader := NewReader(store, time.Minute)
	ctx := context.Background()

	wantErr := errors.New("source query failed")
	_, hit, err := ReadThrough(ctx, reader, "k", func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected loader error to propagate but got: %v", err)
	}
	if hit {
		t.Errorf("expected miss on loader failure")
	}
	if len(store.entries) != 0 {
		t.Errorf("expected no negative caching but found %d entries", len(store.entries))
	}
}

func TestReadThrough_StoreErrorFailsOpen(t *testing.T) {
	store := newMapStore()
	store.getErr = ErrUnavailable
	store.setErr = ErrUnavailable
	reader := NewReader(store, time.Minute)

	loads := 0
	v, hit, err := ReadThrough(context.Background(), reader, "k", func(ctx context.Context) (int, error) {
		loads++
		return 7, nil
	})
	if err != nil {
		t.Fatalf("expected cache failure to stay invisible but got: %v", err)
	}
	if hit {
		t.Errorf("expected miss while the store is unavailable")
	}
	if v != 7 {
		t.Errorf("expected 7 but got: %d", v)
	}
	if loads != 1 {
		t.Errorf("expected one loader call but got: %d", loads)
	}
}

func TestReadThrough_UndecodableEntryDropped(t *testing.T) {
	store := newMapStore()
	store.entries["k"] = []byte{0xc1} // never a valid msgpack payload

	reader := NewReader(store, time.Minute)
	type snapshot struct{ Name string }

	v, hit, err := ReadThrough(context.Background(), reader, "k", func(ctx context.Context) (snapshot, error) {
		return snapshot{Name: "fresh"}, nil
	})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if hit {
		t.Errorf("expected corrupt entry to read as a miss")
	}
	if v.Name != "fresh" {
		t.Errorf("expected reload from source but got: %+v", v)
	}
}

func TestReadThrough_ConcurrentMissesCollapse(t *testing.T) {
	store := newMapStore()
	reader := NewReader(store, time.Minute)

	var mu sync.Mutex
	loads := 0
	release := make(chan struct{})
	loader := func(ctx context.Context) (string, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		<-release
		return "shared", nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := ReadThrough(context.Background(), reader, "hot", loader)
			if err != nil {
				t.Errorf("worker %d: unexpected error: %v", i, err)
				return
			}
			results[i] = v
		}(i)
	}

	// Give the workers a moment to pile up on the same key before the
	// loader completes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, v := range results {
		if v != "shared" {
			t.Errorf("worker %d: expected 'shared' but got: %q", i, v)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if loads != 1 {
		t.Errorf("expected concurrent misses to collapse to one load but got: %d", loads)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	type snapshot struct {
		ID    string
		Price float64
	}

	payload, err := Encode(snapshot{ID: "p1", Price: 99.5})
	if err != nil {
		t.Fatalf("expected no encode error but got: %v", err)
	}

	got, err := Decode[snapshot](payload)
	if err != nil {
		t.Fatalf("expected no decode error but got: %v", err)
	}
	if got.ID != "p1" || got.Price != 99.5 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

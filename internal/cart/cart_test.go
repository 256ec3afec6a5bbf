package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testItem(qty int) Item {
	return Item{
		ProductID: "remera-oversize",
		Title:     "Remera Oversize",
		Price:     decimal.NewFromInt(10000),
		Size:      "M",
		Color:     "negro",
		Qty:       qty,
	}
}

func TestAddMergesByCompositeKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Add(ctx, "sess", testItem(1))
	store.Add(ctx, "sess", testItem(2))
	store.Add(ctx, "sess", testItem(3))

	items := store.Items(ctx, "sess")
	if len(items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(items))
	}
	if items[0].Qty != 6 {
		t.Fatalf("expected summed quantity 6, got %d", items[0].Qty)
	}
}

func TestAddDifferentVariantsKeepSeparateLines(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Add(ctx, "sess", testItem(1))
	other := testItem(1)
	other.Size = "L"
	store.Add(ctx, "sess", other)

	if got := len(store.Items(ctx, "sess")); got != 2 {
		t.Fatalf("expected two variant lines, got %d", got)
	}
}

func TestRemoveDropsLine(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item := testItem(2)
	store.Add(ctx, "sess", item)
	store.Remove(ctx, "sess", item.Key())

	for _, it := range store.Items(ctx, "sess") {
		if it.Key() == item.Key() {
			t.Fatalf("removed line still present")
		}
	}
}

func TestClearEmptiesCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Add(ctx, "sess", testItem(1))
	store.Clear(ctx, "sess")

	if got := len(store.Items(ctx, "sess")); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
}

func TestQuantityClampedToOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Add(ctx, "sess", testItem(0))
	items := store.Items(ctx, "sess")
	if len(items) != 1 || items[0].Qty != 1 {
		t.Fatalf("expected quantity clamped to 1, got %+v", items)
	}
}

func TestSubscribeNotifiesSynchronously(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var seen []string
	unsubscribe := store.Subscribe(func(sessionID string) {
		seen = append(seen, sessionID)
	})

	store.Add(ctx, "sess-a", testItem(1))
	store.Clear(ctx, "sess-b")
	if len(seen) != 2 || seen[0] != "sess-a" || seen[1] != "sess-b" {
		t.Fatalf("unexpected notifications %v", seen)
	}

	unsubscribe()
	store.Add(ctx, "sess-a", testItem(1))
	if len(seen) != 2 {
		t.Fatalf("unsubscribed callback still invoked")
	}
}

func TestSubtotal(t *testing.T) {
	items := []Item{
		{Price: decimal.NewFromInt(10000), Qty: 2},
		{Price: decimal.NewFromInt(2500), Qty: 1},
	}
	if got := Subtotal(items); !got.Equal(decimal.NewFromInt(22500)) {
		t.Fatalf("expected subtotal 22500, got %s", got)
	}
}

type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("redis down")
}

func (failingKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingKV) Del(ctx context.Context, keys ...string) error {
	return errors.New("redis down")
}

func (failingKV) CartKey(sessionID string) string { return "vst:cart:" + sessionID }

func TestRedisStoreDegradesToNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(failingKV{}, time.Hour, nil)

	notified := 0
	store.Subscribe(func(string) { notified++ })

	store.Add(ctx, "sess", testItem(1))
	store.Remove(ctx, "sess", testItem(1).Key())
	store.Clear(ctx, "sess")

	if got := store.Items(ctx, "sess"); len(got) != 0 {
		t.Fatalf("unavailable storage should read as empty, got %v", got)
	}
	if notified != 3 {
		t.Fatalf("mutations should still notify, got %d", notified)
	}
}

type mapKV struct {
	data map[string]string
}

func (m *mapKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (m *mapKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *mapKV) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapKV) CartKey(sessionID string) string { return "vst:cart:" + sessionID }

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(&mapKV{data: map[string]string{}}, time.Hour, nil)

	store.Add(ctx, "sess", testItem(2))
	store.Add(ctx, "sess", testItem(1))

	items := store.Items(ctx, "sess")
	if len(items) != 1 || items[0].Qty != 3 {
		t.Fatalf("unexpected persisted cart %+v", items)
	}
	if !items[0].Price.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("price did not survive round trip: %s", items[0].Price)
	}

	store.Clear(ctx, "sess")
	if got := len(store.Items(ctx, "sess")); got != 0 {
		t.Fatalf("expected cleared cart, got %d", got)
	}
}

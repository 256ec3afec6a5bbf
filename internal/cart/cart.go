package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Item is one line in a shopper's bag. Lines are identified by the
// product/size/color combination; adding an existing combination bumps the
// quantity instead of duplicating the line.
type Item struct {
	ProductID string          `json:"product_id"`
	Slug      string          `json:"slug,omitempty"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Color     string          `json:"color,omitempty"`
	Image     string          `json:"image,omitempty"`
	Qty       int             `json:"qty"`
}

// Key returns the composite identity of the line.
func (i Item) Key() string {
	return strings.Join([]string{i.ProductID, i.Size, i.Color}, "|")
}

// Subtotal is price times quantity for this line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Store holds per-session carts. Mutations persist immediately and notify
// subscribers synchronously. When the backing storage is unavailable the
// operations degrade to no-ops and Items reports an empty cart; the checkout
// surface never sees a storage error.
type Store interface {
	Items(ctx context.Context, sessionID string) []Item
	Add(ctx context.Context, sessionID string, item Item)
	Remove(ctx context.Context, sessionID, key string)
	Clear(ctx context.Context, sessionID string)
	Subscribe(fn func(sessionID string)) (unsubscribe func())
}

// Subtotal sums price times quantity over the provided lines.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func mergeItem(items []Item, item Item) []Item {
	if item.Qty < 1 {
		item.Qty = 1
	}
	key := item.Key()
	for i := range items {
		if items[i].Key() == key {
			items[i].Qty += item.Qty
			return items
		}
	}
	return append(items, item)
}

func removeItem(items []Item, key string) []Item {
	next := items[:0]
	for _, item := range items {
		if item.Key() != key {
			next = append(next, item)
		}
	}
	return next
}

// notifier fans a change event out to subscribers. Notification is
// synchronous; subscribers must not mutate the store from their callback.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(sessionID string)
}

func (n *notifier) subscribe(fn func(sessionID string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(sessionID string))
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(sessionID string) {
	n.mu.Lock()
	subs := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(sessionID)
	}
}

// Package cart keeps a session's pending rentals and mirrors them to
// durable storage after every change.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// DefaultKey is the storage key the cart is written under.
const DefaultKey = "kirayawale_cart"

// Storage is the durable key/value collaborator the cart persists to.
// Get reports a missing key as ok == false and a failed read as an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Snapshot is the copy of a listing taken when it is added to the cart.
// Later edits to the listing do not reach the cart.
type Snapshot struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"user_id"`
	Title       string         `json:"title"`
	Category    model.Category `json:"category"`
	PricePerDay float64        `json:"price_per_day"`
	Location    string         `json:"location"`
	Photos      []string       `json:"photos"`
}

// SnapshotOf copies the cart-relevant fields of l.
func SnapshotOf(l model.Listing) Snapshot {
	photos := make([]string, len(l.Photos))
	copy(photos, l.Photos)
	return Snapshot{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Category:    l.Category,
		PricePerDay: l.PricePerDay,
		Location:    l.Location,
		Photos:      photos,
	}
}

// Entry is one listing in the cart. Quantity and RentalDays are always >= 1.
type Entry struct {
	Snapshot
	Quantity   int `json:"quantity"`
	RentalDays int `json:"rentalDays"`
}

// Subtotal is the entry's price for its quantity and duration.
func (e Entry) Subtotal() float64 {
	return e.PricePerDay * float64(e.Quantity) * float64(e.RentalDays)
}

// Cart is safe for concurrent use. Entries keep insertion order and there
// is at most one entry per listing id.
type Cart struct {
	mu      sync.Mutex
	storage Storage
	key     string
	entries []Entry
}

// Load rehydrates a cart from storage. A missing or corrupt stored value
// yields an empty cart. A failed read is returned and no cart is built,
// so the stored value is never overwritten with an empty one.
func Load(storage Storage, key string) (*Cart, error) {
	raw, ok, err := storage.Get(key)
	if err != nil {
		return nil, fmt.Errorf("cart.Load %s: %w", key, err)
	}
	c := &Cart{storage: storage, key: key}
	if !ok || raw == "" {
		return c, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return c, nil
	}
	for _, e := range entries {
		if e.ID == "" || e.Quantity < 1 || e.RentalDays < 1 {
			continue
		}
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Add puts listing in the cart. If it is already there its quantity grows
// by one and its rental days are replaced with rentalDays. rentalDays
// below 1 means 1.
func (c *Cart) Add(listing model.Listing, rentalDays int) error {
	if rentalDays < 1 {
		rentalDays = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(listing.ID); i >= 0 {
		c.entries[i].Quantity++
		c.entries[i].RentalDays = rentalDays
	} else {
		c.entries = append(c.entries, Entry{
			Snapshot:   SnapshotOf(listing),
			Quantity:   1,
			RentalDays: rentalDays,
		})
	}
	return c.persist()
}

// Remove deletes the entry for listingID. Unknown ids are ignored.
func (c *Cart) Remove(listingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(listingID)
	return c.persist()
}

// UpdateQuantity sets the entry's quantity. A quantity of zero or less
// removes the entry.
func (c *Cart) UpdateQuantity(listingID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(listingID)
		return c.persist()
	}
	if i := c.indexOf(listingID); i >= 0 {
		c.entries[i].Quantity = quantity
	}
	return c.persist()
}

// UpdateRentalDays sets the entry's rental days. Zero or fewer days is
// ignored and the entry keeps its current duration.
func (c *Cart) UpdateRentalDays(listingID string, days int) error {
	if days <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(listingID); i >= 0 {
		c.entries[i].RentalDays = days
	}
	return c.persist()
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return c.persist()
}

// Entries returns a copy of the cart's entries in insertion order.
func (c *Cart) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		e.Photos = append([]string(nil), e.Photos...)
		out[i] = e
	}
	return out
}

// TotalPrice sums price per day x quantity x rental days, using the
// price captured when each listing was added.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, e := range c.entries {
		total += e.Subtotal()
	}
	return total
}

// TotalItems sums quantities, not entries.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, e := range c.entries {
		total += e.Quantity
	}
	return total
}

func (c *Cart) indexOf(listingID string) int {
	for i, e := range c.entries {
		if e.ID == listingID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(listingID string) {
	if i := c.indexOf(listingID); i >= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
}

// persist writes the whole collection. Callers hold c.mu.
func (c *Cart) persist() error {
	entries := c.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cart.persist: marshal: %w", err)
	}
	if err := c.storage.Set(c.key, string(data)); err != nil {
		return fmt.Errorf("cart.persist: %w", err)
	}
	return nil
}

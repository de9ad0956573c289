package order

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Repository persists the full order snapshot. SaveAll overwrites the previous
// snapshot completely; order sizes are small enough that incremental writes
// are not worth the complexity.
type Repository interface {
	LoadAll(ctx context.Context) (map[string]float64, error)
	SaveAll(ctx context.Context, items map[string]float64) error
}

// Store owns the single shared order: item name -> accumulated quantity.
// All mutations are serialized by a mutex and persisted before they become
// visible in memory, so a failed save leaves the previous state intact.
type Store struct {
	mu    sync.Mutex
	repo  Repository
	items map[string]float64
}

// NewStore creates an empty store backed by repo. Call Hydrate before use.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:  repo,
		items: make(map[string]float64),
	}
}

// Hydrate loads the persisted snapshot. Intended to be called once at startup.
func (s *Store) Hydrate(ctx context.Context) error {
	loaded, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]float64, len(loaded))
	for name, qty := range loaded {
		if qty > 0 {
			s.items[name] = qty
		}
	}
	return nil
}

// MergeAdd sums the provided quantities into the current order and persists
// the result. Zero quantities are no-ops and never create entries.
func (s *Store) MergeAdd(ctx context.Context, add map[string]float64) error {
	if len(add) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneItems(s.items)
	for name, qty := range add {
		if qty == 0 {
			continue
		}
		next[name] += qty
		if next[name] <= 0 {
			delete(next, name)
		}
	}
	return s.commit(ctx, next)
}

// Replace atomically discards all current entries and installs items as the
// new order content. Non-positive quantities are dropped.
func (s *Store) Replace(ctx context.Context, items map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]float64, len(items))
	for name, qty := range items {
		if qty > 0 {
			next[name] = qty
		}
	}
	return s.commit(ctx, next)
}

// Clear empties the order and persists the empty snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, make(map[string]float64))
}

// commit persists next and only then makes it the visible state.
// Callers must hold s.mu.
func (s *Store) commit(ctx context.Context, next map[string]float64) error {
	if err := s.repo.SaveAll(ctx, next); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	s.items = next
	return nil
}

// Snapshot returns a read-only copy of the current order.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Empty reports whether the order has no entries.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// FormatRaw renders the order as plain "Name quantity" lines sorted by name,
// suitable for being copied, edited, and re-submitted by a user. Returns ""
// for an empty order.
func (s *Store) FormatRaw() string {
	return formatLines(s.Snapshot(), "")
}

// FormatSummary renders the decorated order summary with a header and
// bullets. Returns "" for an empty order; callers substitute their own
// "order is empty" message.
func (s *Store) FormatSummary() string {
	lines := formatLines(s.Snapshot(), "• ")
	if lines == "" {
		return ""
	}
	return "📦 Общий заказ:\n\n" + lines
}

func cloneItems(items map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(items))
	for name, qty := range items {
		out[name] = qty
	}
	return out
}

func formatLines(items map[string]float64, bullet string) string {
	if len(items) == 0 {
		return ""
	}
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(bullet)
		b.WriteString(capitalize(name))
		b.WriteByte(' ')
		b.WriteString(FormatQuantity(items[name]))
	}
	return b.String()
}

// FormatQuantity renders a quantity with the shortest exact decimal form, so
// re-parsing a rendered order yields the original values.
func FormatQuantity(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

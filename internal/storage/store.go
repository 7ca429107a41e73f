package storage

import (
	"context"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound indicates that no contact exists with the given ID.
var ErrNotFound = errors.New("contact not found")

// Store provides an interface for managing the contact log. All write
// operations are atomic and every operation respects a bounded
// timeout, so a slow disk never stalls the caller's frame loop.
type Store interface {
	// SaveContact inserts a contact when its ID is zero, otherwise it
	// updates the existing row.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - c: Contact to persist; its Time is stored in UTC
	//
	// Returns:
	//   - id: The contact's identifier, newly assigned on insert
	//   - error: ErrNotFound when updating a missing contact
	SaveContact(ctx context.Context, c *Contact) (id int64, err error)

	// Contact retrieves a single contact by its ID.
	//
	// Returns:
	//   - contact: The stored contact
	//   - error: ErrNotFound when no such row exists
	Contact(ctx context.Context, id int64) (contact *Contact, err error)

	// Contacts lists contacts. Options control ordering, paging and
	// callsign filtering; the default is newest first.
	Contacts(ctx context.Context, opts ...ListOption) (contacts []*Contact, err error)

	// CountContacts returns the number of logged contacts.
	CountContacts(ctx context.Context) (int64, error)

	// DeleteContacts removes the given contacts in one transaction.
	// IDs without a matching row are ignored.
	DeleteContacts(ctx context.Context, ids ...int64) error

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}

// ListOption configures a Contacts listing.
type ListOption func(*listQuery)

type listQuery struct {
	sort     SortColumn
	dir      SortDirection
	offset   int
	limit    int
	callsign string
}

// WithSort orders the listing by the given column and direction.
func WithSort(col SortColumn, dir SortDirection) ListOption {
	return func(q *listQuery) {
		if col.Valid() {
			q.sort = col
		}
		q.dir = dir
	}
}

// WithRange pages the listing, skipping offset rows and returning at
// most limit.
func WithRange(offset, limit int) ListOption {
	return func(q *listQuery) {
		if offset >= 0 {
			q.offset = offset
		}
		if limit > 0 {
			q.limit = limit
		}
	}
}

// WithCallsign restricts the listing to contacts with the given
// callsign.
func WithCallsign(callsign string) ListOption {
	return func(q *listQuery) { q.callsign = callsign }
}

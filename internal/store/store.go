// Package store persists contacts in a document store. It hides the concrete
// backend behind Gateway and keeps track of whether the backend connection is
// currently usable.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/model"
)

const (
	// DefaultSaveTimeout is the hard ceiling for a single Create.
	DefaultSaveTimeout = 15 * time.Second

	// DefaultHeartbeatInterval is how often the connection is pinged.
	DefaultHeartbeatInterval = 10 * time.Second
)

var (
	ErrStoreUnavailable      = errors.New("store connection not available")
	ErrSaveTimeout           = errors.New("save operation timed out")
	ErrNotFound              = errors.New("contact not found")
	ErrInvalidID             = errors.New("invalid contact id")
	ErrPersistenceValidation = errors.New("store validation failed")
)

// ValidationError carries one message per store-side rule that a contact
// violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrPersistenceValidation, strings.Join(e.Messages, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrPersistenceValidation
}

// Gateway is the contract between the HTTP layer and a document store.
type Gateway interface {
	// Create saves the draft. The store assigns id and date.
	Create(ctx context.Context, draft model.Draft) (model.Contact, error)

	// ListAll returns every contact, most recent first.
	ListAll(ctx context.Context) ([]model.Contact, error)

	// GetByID returns the contact with the given id.
	GetByID(ctx context.Context, id string) (model.Contact, error)

	// State reports the current connection state without touching the store.
	State() ConnState

	// Close stops the connection monitor and releases the connection.
	Close(ctx context.Context) error
}

// Options tunes a Gateway. Zero values fall back to the defaults above.
type Options struct {
	SaveTimeout       time.Duration
	HeartbeatInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = DefaultSaveTimeout
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	return o
}

// Open connects to the store addressed by uri. The backend is chosen by the
// URI scheme: mongodb:// and mongodb+srv:// select MongoDB, mysql:// selects
// MySQL. An unreachable store is not an error here; the returned Gateway
// reports ErrStoreUnavailable until its monitor sees the store come up.
func Open(ctx context.Context, uri string, opts Options) (Gateway, error) {
	switch {
	case uri == "":
		return nil, errors.New("no store connection string configured")
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		s, err := OpenMongo(ctx, uri, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(uri, "mysql://"):
		s, err := OpenMySQL(ctx, uri, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store connection string scheme in %s", redact(uri))
	}
}

// redact strips credentials from a connection string so it can be logged.
func redact(uri string) string {
	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return "<unparseable>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// now returns the creation timestamp for new contacts. Both backends keep
// millisecond precision, so anything finer would not survive a round trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

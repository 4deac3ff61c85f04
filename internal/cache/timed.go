package cache

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/HartBrook/folio/internal/errors"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = time.Hour

type options struct {
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

// Option configures a TimedCache.
type Option func(*options)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithClock sets the time source used for stamping and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger used for swallowed store failures.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func buildOptions(opts []Option) options {
	o := options{
		ttl: DefaultTTL,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TimedCache is a typed view over a Store whose entries expire after a TTL.
// Expiry is checked lazily on read; stale rows are left in place.
// A nil store behaves as always-miss and Put is a no-op.
type TimedCache[T any] struct {
	store Store
	opts  options
}

// NewTimed creates a TimedCache over store.
func NewTimed[T any](store Store, opts ...Option) *TimedCache[T] {
	return &TimedCache[T]{store: store, opts: buildOptions(opts)}
}

// Get returns the payload under key if it exists and is younger than the TTL.
// Unreadable, corrupt, and stale entries are reported as absent.
func (c *TimedCache[T]) Get(key string) (T, bool) {
	var zero T

	entry, result := c.lookup(key)
	recordLookup(key, result)
	if result != resultHit {
		return zero, false
	}

	var payload T
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		c.opts.log.Debug().Err(err).Str("key", key).Msg("cache payload corrupt")
		return zero, false
	}
	return payload, true
}

func (c *TimedCache[T]) lookup(key string) (*Entry, string) {
	if c.store == nil {
		return nil, resultUnavailable
	}

	data, err := c.store.Get(key)
	if err != nil {
		if stderrors.Is(err, ErrMiss) {
			return nil, resultMiss
		}
		c.opts.log.Debug().Err(errors.CacheUnavailable(err)).Str("key", key).Msg("cache read failed")
		return nil, resultUnavailable
	}

	entry, err := decodeEntry(data)
	if err != nil || entry.Key != key {
		c.opts.log.Debug().Err(err).Str("key", key).Msg("cache entry corrupt")
		return nil, resultCorrupt
	}

	if entry.IsStale(c.opts.now(), c.opts.ttl) {
		return nil, resultStale
	}
	return entry, resultHit
}

// Put overwrites the entry for key with a fresh timestamp.
// Failures are logged and otherwise ignored.
func (c *TimedCache[T]) Put(key string, payload T) {
	if c.store == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.opts.log.Debug().Err(err).Str("key", key).Msg("cache payload not encodable")
		return
	}

	data, err := json.Marshal(Entry{
		Key:      key,
		StoredAt: c.opts.now().UnixMilli(),
		Payload:  raw,
	})
	if err != nil {
		return
	}

	if err := c.store.Put(key, data); err != nil {
		c.opts.log.Debug().Err(errors.CacheUnavailable(err)).Str("key", key).Msg("cache write failed")
	}
}

// Listing describes one stored entry for display.
type Listing struct {
	Key      string
	Account  string
	Category Category
	StoredAt time.Time
	Age      string
	Valid    bool
	Corrupt  bool
}

// Describe lists the entries under prefix without decoding their payloads.
func Describe(store Store, prefix string, opts ...Option) ([]Listing, error) {
	if store == nil {
		return nil, errors.CacheUnavailable(nil)
	}

	o := buildOptions(opts)
	keys, err := store.Keys(prefix)
	if err != nil {
		return nil, errors.CacheUnavailable(err)
	}

	now := o.now()
	listings := make([]Listing, 0, len(keys))
	for _, key := range keys {
		l := Listing{Key: key}
		l.Account, l.Category, _ = SplitKey(key)

		data, err := store.Get(key)
		if err != nil {
			continue
		}
		entry, err := decodeEntry(data)
		if err != nil {
			l.Corrupt = true
			listings = append(listings, l)
			continue
		}

		l.StoredAt = entry.StoredTime()
		l.Age = entry.Age(now)
		l.Valid = !entry.IsStale(now, o.ttl)
		listings = append(listings, l)
	}
	return listings, nil
}

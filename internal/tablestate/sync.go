package tablestate

import (
	"errors"
	"log/slog"
	"net/url"
)

// ErrNoLocation is returned by navigators that have no address bar to read,
// such as background jobs rendering a table.
var ErrNoLocation = errors.New("tablestate: location unavailable")

// Navigator is the address bar of the page that owns a table.
type Navigator interface {
	// Location returns the current URL.
	Location() (*url.URL, error)
	// Replace swaps the current history entry for u without adding a new one.
	Replace(u *url.URL) error
}

// Hydrate builds the initial state from the navigator's current URL. Any
// failure to read the URL yields the schema defaults.
func Hydrate(schema Schema, nav Navigator) State {
	if nav == nil {
		return schema.Defaults()
	}
	loc, err := nav.Location()
	if err != nil || loc == nil {
		return schema.Defaults()
	}
	return Decode(schema, loc.Query())
}

// Synchronizer mirrors table state into the navigator's URL.
type Synchronizer struct {
	schema Schema
	nav    Navigator
	logger *slog.Logger
	onSync func(target *url.URL)
}

// SyncOption customises a Synchronizer.
type SyncOption func(*Synchronizer)

// WithLogger routes navigation failures to logger.
func WithLogger(logger *slog.Logger) SyncOption {
	return func(s *Synchronizer) { s.logger = logger }
}

// WithReplaceHook runs fn after every replace navigation.
func WithReplaceHook(fn func(target *url.URL)) SyncOption {
	return func(s *Synchronizer) { s.onSync = fn }
}

// NewSynchronizer binds schema to nav.
func NewSynchronizer(schema Schema, nav Navigator, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{schema: schema, nav: nav}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Target computes the URL that represents st, keeping the current path. The
// query is rebuilt from the full state every time; parameters not owned by the
// table are dropped.
func (s *Synchronizer) Target(st State) (*url.URL, error) {
	loc, err := s.location()
	if err != nil {
		return nil, err
	}
	return &url.URL{Path: loc.Path, RawQuery: QueryString(s.schema, st)}, nil
}

// Sync replaces the current URL with the one representing st. It returns true
// when a navigation happened; a URL that already matches is left alone.
func (s *Synchronizer) Sync(st State) bool {
	loc, err := s.location()
	if err != nil {
		return false
	}
	target := &url.URL{Path: loc.Path, RawQuery: QueryString(s.schema, st)}
	current := &url.URL{Path: loc.Path, RawQuery: loc.RawQuery}
	if target.String() == current.String() {
		return false
	}
	if err := s.nav.Replace(target); err != nil {
		s.logger.Warn("tablestate: replace url", slog.String("table", s.schema.Name), slog.Any("error", err))
		return false
	}
	if s.onSync != nil {
		s.onSync(target)
	}
	return true
}

// Bind subscribes the synchronizer to store so every committed change is
// reflected in the URL.
func (s *Synchronizer) Bind(store *Store) {
	store.Subscribe(func(_, next State) {
		s.Sync(next)
	})
}

func (s *Synchronizer) location() (*url.URL, error) {
	if s.nav == nil {
		return nil, ErrNoLocation
	}
	loc, err := s.nav.Location()
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrNoLocation
	}
	return loc, nil
}

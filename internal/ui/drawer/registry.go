// Package drawer keeps the side drawer of the admin panel. Each browser
// session owns one registry: the open drawer and its props, or nothing.
package drawer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-cms/internal/shared"
)

// ID names a drawer.
type ID string

// Known drawers.
const (
	None            ID = ""
	PropertyPreview ID = "property-preview"
)

const sessionKey = "drawer"

// ErrNoSession is returned when a registry is used outside a session.
var ErrNoSession = errors.New("drawer: no session")

// PreviewProps are the props of the property quick view.
type PreviewProps struct {
	PropertyID int64 `json:"property_id"`
}

// State is the active drawer and its encoded props.
type State struct {
	ID    ID              `json:"id"`
	Props json.RawMessage `json:"props,omitempty"`
}

// IsOpen reports whether a drawer is open.
func (s State) IsOpen() bool {
	return s.ID != None
}

// Registry reads and writes the drawer state of one session. Open and Close
// are the only mutations.
type Registry struct {
	sess *shared.Session
}

// ForSession returns the registry of sess.
func ForSession(sess *shared.Session) *Registry {
	return &Registry{sess: sess}
}

// Current returns the drawer state. A missing or corrupt entry reads as
// closed.
func (r *Registry) Current() State {
	if r == nil || r.sess == nil {
		return State{}
	}
	raw := r.sess.Get(sessionKey)
	if raw == "" {
		return State{}
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}
	}
	return st
}

// Open makes id the active drawer with props.
func (r *Registry) Open(id ID, props any) error {
	if r == nil || r.sess == nil {
		return ErrNoSession
	}
	if id == None {
		return fmt.Errorf("drawer: open: empty id")
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("drawer: encode props: %w", err)
	}
	data, err := json.Marshal(State{ID: id, Props: encoded})
	if err != nil {
		return fmt.Errorf("drawer: encode state: %w", err)
	}
	r.sess.Set(sessionKey, string(data))
	return nil
}

// Close closes the active drawer.
func (r *Registry) Close() {
	if r == nil || r.sess == nil {
		return
	}
	r.sess.Delete(sessionKey)
}

// Props decodes the props of st into T.
func Props[T any](st State) (T, error) {
	var out T
	if len(st.Props) == 0 {
		return out, fmt.Errorf("drawer: %q has no props", st.ID)
	}
	if err := json.Unmarshal(st.Props, &out); err != nil {
		return out, fmt.Errorf("drawer: decode %q props: %w", st.ID, err)
	}
	return out, nil
}

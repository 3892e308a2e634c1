package drawer

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-cms/internal/shared"
)

func newSession(t *testing.T) *shared.Session {
	t.Helper()
	sessions := shared.NewSessionManager(nil, "odyssey_session", "secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	return sess
}

func TestRegistryOpenAndClose(t *testing.T) {
	reg := ForSession(newSession(t))
	assert.False(t, reg.Current().IsOpen())

	require.NoError(t, reg.Open(PropertyPreview, PreviewProps{PropertyID: 12}))
	st := reg.Current()
	assert.True(t, st.IsOpen())
	assert.Equal(t, PropertyPreview, st.ID)

	props, err := Props[PreviewProps](st)
	require.NoError(t, err)
	assert.Equal(t, int64(12), props.PropertyID)

	reg.Close()
	assert.False(t, reg.Current().IsOpen())
}

func TestRegistryOpenReplacesDrawer(t *testing.T) {
	reg := ForSession(newSession(t))
	require.NoError(t, reg.Open(PropertyPreview, PreviewProps{PropertyID: 1}))
	require.NoError(t, reg.Open(PropertyPreview, PreviewProps{PropertyID: 2}))

	props, err := Props[PreviewProps](reg.Current())
	require.NoError(t, err)
	assert.Equal(t, int64(2), props.PropertyID)
}

func TestRegistryRejectsEmptyID(t *testing.T) {
	reg := ForSession(newSession(t))
	assert.Error(t, reg.Open(None, nil))
}

func TestRegistryWithoutSession(t *testing.T) {
	reg := ForSession(nil)
	assert.ErrorIs(t, reg.Open(PropertyPreview, PreviewProps{PropertyID: 1}), ErrNoSession)
	assert.False(t, reg.Current().IsOpen())
	reg.Close()
}

func TestRegistryCorruptEntryReadsClosed(t *testing.T) {
	sess := newSession(t)
	sess.Set(sessionKey, "{not json")
	assert.False(t, ForSession(sess).Current().IsOpen())
}

func TestPropsWithoutPayload(t *testing.T) {
	_, err := Props[PreviewProps](State{ID: PropertyPreview})
	assert.Error(t, err)
}

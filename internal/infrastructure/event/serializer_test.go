package event

import (
	"testing"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewEventSerializer()
	s.Register("order.test", &fabricTestEvent{})

	evt := newFabricTestEvent("order.test", shared.NamespaceOrder, 42)
	data, err := s.Serialize(evt)
	require.NoError(t, err)

	got, err := s.Deserialize("order.test", data)
	require.NoError(t, err)

	decoded, ok := got.(*fabricTestEvent)
	require.True(t, ok)
	assert.Equal(t, evt.EventID(), decoded.EventID())
	assert.Equal(t, shared.NamespaceOrder, decoded.EventNamespace())
	assert.Equal(t, 42, decoded.Seq)
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize("no.such.event", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
	assert.False(t, s.IsRegistered("no.such.event"))
}

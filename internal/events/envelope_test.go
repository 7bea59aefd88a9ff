package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	OrderID string `json:"order_id"`
	Count   int    `json:"count"`
}

func TestNew_AssignsIdentity(t *testing.T) {
	env, err := New("OrderPlaced", "order-1", samplePayload{OrderID: "order-1", Count: 3})
	require.NoError(t, err)

	_, err = uuid.Parse(env.ID)
	assert.NoError(t, err)
	assert.Equal(t, "OrderPlaced", env.Type)
	assert.Equal(t, "order-1", env.Key)
	assert.False(t, env.Timestamp.IsZero())

	var out samplePayload
	require.NoError(t, env.Decode(&out))
	assert.Equal(t, 3, out.Count)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("", "k", nil)
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = New("Bad", "k", make(chan int))
	assert.Error(t, err)
}

func TestNew_UniqueIDs(t *testing.T) {
	a, err := New("OrderPlaced", "k", 1)
	require.NoError(t, err)
	b, err := New("OrderPlaced", "k", 1)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestLogPublisher(t *testing.T) {
	env, err := New("OrderPlaced", "k", 1)
	require.NoError(t, err)

	assert.NoError(t, LogPublisher{}.Publish(context.Background(), env))
}

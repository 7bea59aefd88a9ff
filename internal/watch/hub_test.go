package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	var h Hub[int]
	var got []int

	h.Subscribe(func(v int) { got = append(got, v) })
	h.Subscribe(func(v int) { got = append(got, v*10) })

	h.Publish(2)

	assert.ElementsMatch(t, []int{2, 20}, got)
}

func TestHub_DisposeStopsDelivery(t *testing.T) {
	var h Hub[string]
	calls := 0

	dispose := h.Subscribe(func(string) { calls++ })
	h.Publish("a")
	dispose()
	dispose()
	h.Publish("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, h.Len())
}

func TestHub_SubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	var h Hub[int]
	var dispose func()
	calls := 0
	dispose = h.Subscribe(func(int) {
		calls++
		dispose()
	})

	h.Publish(1)
	h.Publish(2)

	assert.Equal(t, 1, calls)
}

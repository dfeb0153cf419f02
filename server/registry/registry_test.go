package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hiCozyty/zmq-bridge/server/identifiers"
	"github.com/hiCozyty/zmq-bridge/server/registry"
	"github.com/hiCozyty/zmq-bridge/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type mockMember struct {
	id identifiers.SessionID

	mu        sync.Mutex
	received  []string
	refuse    bool
	onDeliver func()
}

func newMockMember(id string) *mockMember {
	return &mockMember{id: identifiers.SessionID(id)}
}

func (m *mockMember) ID() identifiers.SessionID {
	return m.id
}

func (m *mockMember) Deliver(text string) bool {
	if m.onDeliver != nil {
		m.onDeliver()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refuse {
		return false
	}

	m.received = append(m.received, text)

	return true
}

func (m *mockMember) Received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.received...)
}

func TestRegistry_BroadcastToAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := registry.New(test.NewLogger())

	a, b, c := newMockMember("a"), newMockMember("b"), newMockMember("c")

	r.Add(a)
	r.Add(b)
	r.Add(c)

	assert.Equal(t, 3, r.Broadcast("tick:BTCUSDT:50000"))

	for _, m := range []*mockMember{a, b, c} {
		assert.Equal(t, []string{"tick:BTCUSDT:50000"}, m.Received(), "member %s", m.id)
	}
}

func TestRegistry_AddIdempotent(t *testing.T) {
	r := registry.New(test.NewLogger())

	first := newMockMember("a")
	second := newMockMember("a")

	r.Add(first)
	r.Add(second)

	assert.Equal(t, 1, r.Size())
	assert.Equal(t, 1, r.Broadcast("tick"))
	assert.Equal(t, []string{"tick"}, first.Received())
	assert.Empty(t, second.Received())
}

func TestRegistry_Remove(t *testing.T) {
	r := registry.New(test.NewLogger())

	a, b := newMockMember("a"), newMockMember("b")

	r.Add(a)
	r.Add(b)
	r.Remove(a.ID())
	r.Remove(a.ID())
	r.Remove("unknown")

	assert.Equal(t, 1, r.Size())
	assert.Equal(t, 1, r.Broadcast("tick"))
	assert.Empty(t, a.Received())
	assert.Equal(t, []string{"tick"}, b.Received())
}

func TestRegistry_BroadcastCountsRefused(t *testing.T) {
	r := registry.New(test.NewLogger())

	a, b := newMockMember("a"), newMockMember("b")
	b.refuse = true

	r.Add(a)
	r.Add(b)

	assert.Equal(t, 1, r.Broadcast("tick"))
}

func TestRegistry_BroadcastEmpty(t *testing.T) {
	r := registry.New(test.NewLogger())

	assert.Equal(t, 0, r.Broadcast("tick"))
}

func TestRegistry_IDs(t *testing.T) {
	r := registry.New(test.NewLogger())

	r.Add(newMockMember("c"))
	r.Add(newMockMember("a"))
	r.Add(newMockMember("b"))

	assert.Equal(t, []identifiers.SessionID{"a", "b", "c"}, r.IDs())
}

func TestRegistry_RemoveDuringBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := registry.New(test.NewLogger())

	a, b := newMockMember("a"), newMockMember("b")

	// Deliver must not be called with a registry lock held, or these calls
	// would deadlock.
	a.onDeliver = func() {
		r.Remove(b.ID())
		r.Add(newMockMember("late"))
	}
	b.onDeliver = func() {
		r.Remove(a.ID())
	}

	r.Add(a)
	r.Add(b)

	delivered := r.Broadcast("tick")
	assert.GreaterOrEqual(t, delivered, 1)
	assert.LessOrEqual(t, delivered, 2)
	assert.Contains(t, r.IDs(), identifiers.SessionID("late"))
}

func TestRegistry_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := registry.New(test.NewLogger())

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)

		go func(i int) {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				m := newMockMember(fmt.Sprintf("%d-%d", i, j))
				r.Add(m)
				r.Remove(m.ID())
			}
		}(i)

		go func() {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				r.Broadcast("tick")
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 0, r.Size())
}

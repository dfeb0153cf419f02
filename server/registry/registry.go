// Package registry keeps the set of live websocket sessions that receive
// broadcasts from the transport peer.
package registry

import (
	"sort"

	"github.com/hiCozyty/zmq-bridge/server/identifiers"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Member is a session output. Deliver must not block.
type Member interface {
	ID() identifiers.SessionID
	// Deliver queues text for the member and reports whether it was accepted.
	Deliver(text string) bool
}

type Registry struct {
	log     logger.Logger
	members cmap.ConcurrentMap[string, Member]
}

func New(log logger.Logger) *Registry {
	return &Registry{
		log:     log.WithNamespaceAppended("registry"),
		members: cmap.New[Member](),
	}
}

// Add registers member. Adding the same id twice keeps the first member.
func (r *Registry) Add(member Member) {
	id := member.ID()

	if !r.members.SetIfAbsent(id.String(), member) {
		return
	}

	prometheusMembersActive.Inc()

	r.log.Trace("Add", logger.Ctx{
		"session_id": id,
	})
}

// Remove is a no-op for unknown ids.
func (r *Registry) Remove(id identifiers.SessionID) {
	if _, ok := r.members.Pop(id.String()); !ok {
		return
	}

	prometheusMembersActive.Dec()

	r.log.Trace("Remove", logger.Ctx{
		"session_id": id,
	})
}

// Broadcast delivers text to a snapshot of the current members and returns
// the number of members that accepted it. Members added or removed while the
// broadcast runs are not affected by it.
func (r *Registry) Broadcast(text string) int {
	snapshot := r.members.Items()

	delivered := 0

	for _, member := range snapshot {
		if member.Deliver(text) {
			delivered++

			continue
		}

		prometheusDeliveriesDroppedTotal.Inc()
	}

	return delivered
}

func (r *Registry) Size() int {
	return r.members.Count()
}

// IDs returns the sorted ids of the current members.
func (r *Registry) IDs() []identifiers.SessionID {
	keys := r.members.Keys()

	ids := make(identifiers.SessionIDs, len(keys))
	for i, key := range keys {
		ids[i] = identifiers.SessionID(key)
	}

	sort.Sort(ids)

	return ids
}

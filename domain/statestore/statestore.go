// Package statestore is an in-memory tuplespace implementation of the
// StateStore and Executor collaborators. States are multisets of tuples
// committed to with a multiset hash, so a state's commitment does not depend
// on the order its tuples were added in.
package statestore

import (
	"sync"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// StateStore keeps every state it has seen, keyed by commitment
type StateStore struct {
	lock   sync.RWMutex
	states map[externalapi.DomainHash]tupleCollection
}

// New returns a StateStore that holds only the empty state
func New() *StateStore {
	return &StateStore{
		states: map[externalapi.DomainHash]tupleCollection{
			*externalapi.NewZeroHash(): {},
		},
	}
}

// stateHandle is a mutable working copy of a state. origin is the
// commitment of the state the handle was snapshotted from.
type stateHandle struct {
	store  *StateStore
	origin externalapi.DomainHash
	tuples tupleCollection
}

// Commitment returns the commitment of the handle's current tuples and
// registers them with the store, so that they can later be snapshotted
func (h *stateHandle) Commitment() (*externalapi.DomainHash, error) {
	commitment := h.tuples.commitment()
	h.store.register(commitment, h.tuples)
	return commitment, nil
}

func (s *StateStore) register(commitment *externalapi.DomainHash, tuples tupleCollection) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.states[*commitment]; ok {
		return
	}
	s.states[*commitment] = tuples.clone()
}

func (s *StateStore) state(commitment *externalapi.DomainHash) (tupleCollection, error) {
	if commitment == nil {
		return nil, errors.New("nil state commitment")
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	tuples, ok := s.states[*commitment]
	if !ok {
		return nil, errors.Errorf("state %s is unknown", commitment)
	}
	return tuples, nil
}

// Has returns whether the store holds the state with the given commitment
func (s *StateStore) Has(commitment *externalapi.DomainHash) bool {
	_, err := s.state(commitment)
	return err == nil
}

// Snapshot returns a handle to a copy of the state with the given commitment
func (s *StateStore) Snapshot(commitment *externalapi.DomainHash) (externalapi.StateHandle, error) {
	tuples, err := s.state(commitment)
	if err != nil {
		return nil, err
	}
	return &stateHandle{store: s, origin: *commitment, tuples: tuples.clone()}, nil
}

// ApplyDelta returns a new handle holding the tuples of handle with the
// difference between the state committed to by commitment and handle's
// origin applied to them. handle itself is not modified.
func (s *StateStore) ApplyDelta(handle externalapi.StateHandle, commitment *externalapi.DomainHash) (externalapi.StateHandle, error) {
	h, err := s.ownHandle(handle)
	if err != nil {
		return nil, err
	}

	from, err := s.state(&h.origin)
	if err != nil {
		return nil, err
	}
	to, err := s.state(commitment)
	if err != nil {
		return nil, err
	}

	tuples, err := h.tuples.withDelta(from, to)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot apply the delta of state %s onto a snapshot of %s",
			commitment, h.origin)
	}
	return &stateHandle{store: s, origin: h.origin, tuples: tuples}, nil
}

func (s *StateStore) ownHandle(handle externalapi.StateHandle) (*stateHandle, error) {
	h, ok := handle.(*stateHandle)
	if !ok || h.store != s {
		return nil, errors.Errorf("state handle of type %T was not created by this store", handle)
	}
	return h, nil
}

// Dump returns a readable dump of the state with the given commitment
func (s *StateStore) Dump(commitment *externalapi.DomainHash) string {
	tuples, err := s.state(commitment)
	if err != nil {
		return err.Error()
	}
	return tuples.String()
}

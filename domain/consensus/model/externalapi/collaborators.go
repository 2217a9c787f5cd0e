package externalapi

// StateHandle is an opaque reference to a state held by a StateStore
type StateHandle interface {
	Commitment() (*DomainHash, error)
}

// StateStore is the storage collaborator holding execution states.
// The zero hash denotes the empty state.
type StateStore interface {
	// Snapshot returns a handle to the state with the given commitment
	Snapshot(commitment *DomainHash) (StateHandle, error)

	// ApplyDelta applies onto handle the changes that the state with the given
	// commitment carries relative to the state handle was snapshotted from
	ApplyDelta(handle StateHandle, commitment *DomainHash) (StateHandle, error)
}

// Executor is the execution collaborator. It runs a deploy's payload on top of
// preState and returns the deploy's event log together with the commitment of
// the resulting state.
type Executor interface {
	ExecuteAndTrace(deployPayload []byte, preState StateHandle) (EventLog, *DomainHash, error)
}

// PatternMatcher optionally refines conflict detection. CouldMatch returns false
// only when the consume pattern provably never matches the given data.
type PatternMatcher interface {
	CouldMatch(patternHash *DomainHash, dataHash *DomainHash) bool
}

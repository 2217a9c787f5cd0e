package conflictdetector

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// conflictDetector decides whether the deploys of sibling branches commute
type conflictDetector struct {
	databaseContext model.DBReader

	blockStore          model.BlockStore
	eventLogStore       model.EventLogStore
	dagTraversalManager model.DAGTraversalManager

	patternMatcher externalapi.PatternMatcher
	workers        int
}

// New instantiates a new ConflictDetector. patternMatcher may be nil, in
// which case every consume on a channel is assumed to possibly match every
// produce on it.
func New(
	databaseContext model.DBReader,
	blockStore model.BlockStore,
	eventLogStore model.EventLogStore,
	dagTraversalManager model.DAGTraversalManager,
	patternMatcher externalapi.PatternMatcher,
	workers int) model.ConflictDetector {

	if workers < 1 {
		workers = 1
	}
	return &conflictDetector{
		databaseContext:     databaseContext,
		blockStore:          blockStore,
		eventLogStore:       eventLogStore,
		dagTraversalManager: dagTraversalManager,
		patternMatcher:      patternMatcher,
		workers:             workers,
	}
}

// ConflictsBetween returns true unless the two event logs provably commute
func (cd *conflictDetector) ConflictsBetween(eventLogA externalapi.EventLog, eventLogB externalapi.EventLog) bool {
	return cd.footprintsConflict(newDeployFootprint(eventLogA), newDeployFootprint(eventLogB))
}

func (cd *conflictDetector) footprintsConflict(footprintA, footprintB deployFootprint) bool {
	if len(footprintB) < len(footprintA) {
		footprintA, footprintB = footprintB, footprintA
	}
	for channel, channelFootprintA := range footprintA {
		channelFootprintB, ok := footprintB[channel]
		if !ok {
			continue
		}
		if cd.channelFootprintsConflict(channelFootprintA, channelFootprintB) {
			return true
		}
	}
	return false
}

func (cd *conflictDetector) channelFootprintsConflict(a, b *channelFootprint) bool {
	switch {
	case a.kind == produceOnly && b.kind == produceOnly:
		return false
	case a.kind == consumeOnly && b.kind == consumeOnly:
		return false
	case a.kind == contractSend && b.kind == contractSend:
		return a.key != b.key
	case a.kind == persistentRead && b.kind == persistentRead:
		return a.key != b.key
	case a.kind == produceOnly && b.kind == consumeOnly:
		return cd.couldAnyMatch(b.patternHashes, a.dataHashes)
	case a.kind == consumeOnly && b.kind == produceOnly:
		return cd.couldAnyMatch(a.patternHashes, b.dataHashes)
	}
	return true
}

func (cd *conflictDetector) couldAnyMatch(patternHashes, dataHashes []*externalapi.DomainHash) bool {
	if cd.patternMatcher == nil {
		return true
	}
	for _, patternHash := range patternHashes {
		for _, dataHash := range dataHashes {
			if cd.patternMatcher.CouldMatch(patternHash, dataHash) {
				return true
			}
		}
	}
	return false
}

func unknownEventError(event externalapi.Event) error {
	return errors.Errorf("unknown event type %T", event)
}

package conflictdetector

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
)

type footprintKind uint8

const (
	produceOnly footprintKind = iota
	consumeOnly
	contractSend
	persistentRead
	mixed
)

var footprintKindStrings = map[footprintKind]string{
	produceOnly:    "ProduceOnly",
	consumeOnly:    "ConsumeOnly",
	contractSend:   "Contract",
	persistentRead: "PersistentRead",
	mixed:          "Mixed",
}

func (kind footprintKind) String() string {
	return footprintKindStrings[kind]
}

// channelFootprint summarizes how a single deploy interacted with a single
// channel
type channelFootprint struct {
	kind footprintKind

	// key is the consume key of the continuation for contractSend, and the
	// produce key of the datum for persistentRead
	key externalapi.DomainHash

	dataHashes    []*externalapi.DomainHash
	patternHashes []*externalapi.DomainHash
}

// deployFootprint maps every channel a deploy touched to its footprint there
type deployFootprint map[externalapi.DomainHash]*channelFootprint

type channelEvents struct {
	produces []*externalapi.Produce
	consumes []*externalapi.Consume
	comms    []*externalapi.Comm
}

func newDeployFootprint(eventLog externalapi.EventLog) deployFootprint {
	byChannel := make(map[externalapi.DomainHash]*channelEvents)
	eventsOf := func(channel *externalapi.DomainHash) *channelEvents {
		events, ok := byChannel[*channel]
		if !ok {
			events = &channelEvents{}
			byChannel[*channel] = events
		}
		return events
	}

	ownProduces := make(map[externalapi.DomainHash]struct{})
	ownConsumes := make(map[externalapi.DomainHash]struct{})

	for _, event := range eventLog {
		switch event := event.(type) {
		case *externalapi.Produce:
			events := eventsOf(event.Channel)
			events.produces = append(events.produces, event)
			ownProduces[consensushashing.ProduceKey(event)] = struct{}{}
		case *externalapi.Consume:
			for _, channel := range distinctChannels(event.Channels) {
				events := eventsOf(channel)
				events.consumes = append(events.consumes, event)
			}
			ownConsumes[consensushashing.ConsumeKey(event)] = struct{}{}
		case *externalapi.Comm:
			for _, channel := range distinctChannels(event.Consume.Channels) {
				events := eventsOf(channel)
				events.comms = append(events.comms, event)
			}
		default:
			panic(unknownEventError(event))
		}
	}

	footprint := make(deployFootprint, len(byChannel))
	for channel, events := range byChannel {
		channel := channel
		footprint[channel] = classifyChannel(&channel, events, ownProduces, ownConsumes)
	}
	return footprint
}

func classifyChannel(channel *externalapi.DomainHash, events *channelEvents,
	ownProduces, ownConsumes map[externalapi.DomainHash]struct{}) *channelFootprint {

	footprint := &channelFootprint{kind: mixed}
	for _, produce := range events.produces {
		footprint.dataHashes = append(footprint.dataHashes, produce.DataHash)
	}
	for _, consume := range events.consumes {
		footprint.patternHashes = append(footprint.patternHashes, consume.PatternHash)
	}

	if len(events.comms) == 0 {
		switch {
		case len(events.produces) > 0 && len(events.consumes) == 0:
			footprint.kind = produceOnly
		case len(events.produces) == 0 && len(events.consumes) > 0:
			footprint.kind = consumeOnly
		}
		return footprint
	}

	if key, ok := contractKey(channel, events, ownConsumes); ok {
		footprint.kind = contractSend
		footprint.key = key
		return footprint
	}
	if key, ok := persistentReadKey(channel, events, ownProduces, ownConsumes); ok {
		footprint.kind = persistentRead
		footprint.key = key
	}
	return footprint
}

// contractKey checks whether every interaction on channel is a send of this
// deploy received by one and the same pre-existing persistent continuation
func contractKey(channel *externalapi.DomainHash, events *channelEvents,
	ownConsumes map[externalapi.DomainHash]struct{}) (externalapi.DomainHash, bool) {

	if len(events.consumes) > 0 {
		return externalapi.DomainHash{}, false
	}
	for _, produce := range events.produces {
		if produce.Persistent {
			return externalapi.DomainHash{}, false
		}
	}

	continuation := events.comms[0].Consume
	if !continuation.Persistent {
		return externalapi.DomainHash{}, false
	}
	key := consensushashing.ConsumeKey(continuation)
	if _, ok := ownConsumes[key]; ok {
		return externalapi.DomainHash{}, false
	}

	matched := make(map[externalapi.DomainHash]int)
	for _, comm := range events.comms {
		if consensushashing.ConsumeKey(comm.Consume) != key {
			return externalapi.DomainHash{}, false
		}
		for _, produce := range producesOn(channel, comm) {
			matched[consensushashing.ProduceKey(produce)]++
		}
	}

	// The sends received by the continuation must be exactly the sends of
	// this deploy
	for _, produce := range events.produces {
		produceKey := consensushashing.ProduceKey(produce)
		if matched[produceKey] == 0 {
			return externalapi.DomainHash{}, false
		}
		matched[produceKey]--
	}
	for _, count := range matched {
		if count != 0 {
			return externalapi.DomainHash{}, false
		}
	}
	return key, true
}

// persistentReadKey checks whether every interaction on channel is a
// receive of this deploy matched by one and the same pre-existing
// persistent datum
func persistentReadKey(channel *externalapi.DomainHash, events *channelEvents,
	ownProduces, ownConsumes map[externalapi.DomainHash]struct{}) (externalapi.DomainHash, bool) {

	if len(events.produces) > 0 {
		return externalapi.DomainHash{}, false
	}

	var key externalapi.DomainHash
	matchedConsumes := make(map[externalapi.DomainHash]struct{})
	for i, comm := range events.comms {
		consumeKey := consensushashing.ConsumeKey(comm.Consume)
		if _, ok := ownConsumes[consumeKey]; !ok {
			return externalapi.DomainHash{}, false
		}
		matchedConsumes[consumeKey] = struct{}{}

		produces := producesOn(channel, comm)
		if len(produces) == 0 {
			return externalapi.DomainHash{}, false
		}
		for j, produce := range produces {
			if !produce.Persistent {
				return externalapi.DomainHash{}, false
			}
			produceKey := consensushashing.ProduceKey(produce)
			if i == 0 && j == 0 {
				key = produceKey
				continue
			}
			if produceKey != key {
				return externalapi.DomainHash{}, false
			}
		}
	}

	if _, ok := ownProduces[key]; ok {
		return externalapi.DomainHash{}, false
	}
	for _, consume := range events.consumes {
		if _, ok := matchedConsumes[consensushashing.ConsumeKey(consume)]; !ok {
			return externalapi.DomainHash{}, false
		}
	}
	return key, true
}

func producesOn(channel *externalapi.DomainHash, comm *externalapi.Comm) []*externalapi.Produce {
	produces := make([]*externalapi.Produce, 0, len(comm.Produces))
	for _, produce := range comm.Produces {
		if produce.Channel.Equal(channel) {
			produces = append(produces, produce)
		}
	}
	return produces
}

func distinctChannels(channels []*externalapi.DomainHash) []*externalapi.DomainHash {
	seen := make(map[externalapi.DomainHash]struct{}, len(channels))
	distinct := make([]*externalapi.DomainHash, 0, len(channels))
	for _, channel := range channels {
		if _, ok := seen[*channel]; ok {
			continue
		}
		seen[*channel] = struct{}{}
		distinct = append(distinct, channel)
	}
	return distinct
}

package conflictdetector

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
)

func channel(name string) *externalapi.DomainHash {
	return hashes.HashData([]byte("channel/" + name))
}

func data(name string) *externalapi.DomainHash {
	return hashes.HashData([]byte("data/" + name))
}

func produce(channelName, dataName string, persistent bool) *externalapi.Produce {
	return &externalapi.Produce{Channel: channel(channelName), DataHash: data(dataName), Persistent: persistent}
}

func consume(channelName, patternName string, persistent bool) *externalapi.Consume {
	return &externalapi.Consume{
		Channels:    []*externalapi.DomainHash{channel(channelName)},
		PatternHash: data(patternName),
		Persistent:  persistent,
	}
}

func comm(c *externalapi.Consume, produces ...*externalapi.Produce) *externalapi.Comm {
	return &externalapi.Comm{Consume: c, Produces: produces}
}

type rejectingPatternMatcher struct{}

func (rejectingPatternMatcher) CouldMatch(_, _ *externalapi.DomainHash) bool {
	return false
}

func TestConflictsBetween(t *testing.T) {
	contract := consume("x", "contract", true)
	otherContract := consume("x", "other-contract", true)
	persistentDatum := produce("x", "config", true)
	otherPersistentDatum := produce("x", "other-config", true)

	tests := []struct {
		name               string
		eventLogA          externalapi.EventLog
		eventLogB          externalapi.EventLog
		withPatternMatcher bool
		expectedConflict   bool
	}{
		{
			name:             "empty logs",
			eventLogA:        externalapi.EventLog{},
			eventLogB:        externalapi.EventLog{},
			expectedConflict: false,
		},
		{
			name:             "disjoint channels",
			eventLogA:        externalapi.EventLog{produce("x", "1", false)},
			eventLogB:        externalapi.EventLog{consume("y", "p", false)},
			expectedConflict: false,
		},
		{
			name:             "two produces on the same channel",
			eventLogA:        externalapi.EventLog{produce("x", "1", false)},
			eventLogB:        externalapi.EventLog{produce("x", "2", true)},
			expectedConflict: false,
		},
		{
			name:             "two consumes on the same channel",
			eventLogA:        externalapi.EventLog{consume("x", "p", false)},
			eventLogB:        externalapi.EventLog{consume("x", "q", true)},
			expectedConflict: false,
		},
		{
			name:             "produce against consume on the same channel",
			eventLogA:        externalapi.EventLog{produce("x", "1", false)},
			eventLogB:        externalapi.EventLog{consume("x", "p", false)},
			expectedConflict: true,
		},
		{
			name:               "produce against consume with a pattern that cannot match",
			eventLogA:          externalapi.EventLog{produce("x", "1", false)},
			eventLogB:          externalapi.EventLog{consume("x", "p", false)},
			withPatternMatcher: true,
			expectedConflict:   false,
		},
		{
			name: "two sends to the same persistent contract",
			eventLogA: externalapi.EventLog{
				produce("x", "1", false), comm(contract, produce("x", "1", false)),
			},
			eventLogB: externalapi.EventLog{
				produce("x", "2", false), comm(contract, produce("x", "2", false)),
			},
			expectedConflict: false,
		},
		{
			name: "sends to different persistent contracts",
			eventLogA: externalapi.EventLog{
				produce("x", "1", false), comm(contract, produce("x", "1", false)),
			},
			eventLogB: externalapi.EventLog{
				produce("x", "2", false), comm(otherContract, produce("x", "2", false)),
			},
			expectedConflict: true,
		},
		{
			name: "send to a contract against a plain produce",
			eventLogA: externalapi.EventLog{
				produce("x", "1", false), comm(contract, produce("x", "1", false)),
			},
			eventLogB:        externalapi.EventLog{produce("x", "2", false)},
			expectedConflict: true,
		},
		{
			name: "send to a non persistent continuation",
			eventLogA: externalapi.EventLog{
				produce("x", "1", false), comm(consume("x", "once", false), produce("x", "1", false)),
			},
			eventLogB: externalapi.EventLog{
				produce("x", "2", false), comm(consume("x", "once", false), produce("x", "2", false)),
			},
			expectedConflict: true,
		},
		{
			name: "two reads of the same persistent datum",
			eventLogA: externalapi.EventLog{
				consume("x", "p", false), comm(consume("x", "p", false), persistentDatum),
			},
			eventLogB: externalapi.EventLog{
				consume("x", "q", true), comm(consume("x", "q", true), persistentDatum),
			},
			expectedConflict: false,
		},
		{
			name: "reads of different persistent data",
			eventLogA: externalapi.EventLog{
				consume("x", "p", false), comm(consume("x", "p", false), persistentDatum),
			},
			eventLogB: externalapi.EventLog{
				consume("x", "q", false), comm(consume("x", "q", false), otherPersistentDatum),
			},
			expectedConflict: true,
		},
		{
			name: "read of a non persistent datum",
			eventLogA: externalapi.EventLog{
				consume("x", "p", false), comm(consume("x", "p", false), produce("x", "1", false)),
			},
			eventLogB: externalapi.EventLog{
				consume("x", "q", false), comm(consume("x", "q", false), produce("x", "1", false)),
			},
			expectedConflict: true,
		},
		{
			name: "deploy that talks to itself",
			eventLogA: externalapi.EventLog{
				consume("x", "p", false), produce("x", "1", false),
				comm(consume("x", "p", false), produce("x", "1", false)),
			},
			eventLogB:        externalapi.EventLog{produce("x", "2", false)},
			expectedConflict: true,
		},
	}

	for _, test := range tests {
		var patternMatcher externalapi.PatternMatcher
		if test.withPatternMatcher {
			patternMatcher = rejectingPatternMatcher{}
		}
		cd := New(nil, nil, nil, nil, patternMatcher, 1)

		conflictsAB := cd.ConflictsBetween(test.eventLogA, test.eventLogB)
		if conflictsAB != test.expectedConflict {
			t.Errorf("%s: expected conflict %t but got %t", test.name, test.expectedConflict, conflictsAB)
		}
		conflictsBA := cd.ConflictsBetween(test.eventLogB, test.eventLogA)
		if conflictsBA != conflictsAB {
			t.Errorf("%s: ConflictsBetween is not symmetric", test.name)
		}
	}
}

func TestClassifyChannel(t *testing.T) {
	contract := consume("x", "contract", true)

	tests := []struct {
		name         string
		eventLog     externalapi.EventLog
		expectedKind footprintKind
	}{
		{
			name:         "produce only",
			eventLog:     externalapi.EventLog{produce("x", "1", false), produce("x", "2", true)},
			expectedKind: produceOnly,
		},
		{
			name:         "consume only",
			eventLog:     externalapi.EventLog{consume("x", "p", false)},
			expectedKind: consumeOnly,
		},
		{
			name:         "unmatched produce and consume",
			eventLog:     externalapi.EventLog{produce("x", "1", false), consume("x", "p", false)},
			expectedKind: mixed,
		},
		{
			name: "contract",
			eventLog: externalapi.EventLog{
				produce("x", "1", false), produce("x", "2", false),
				comm(contract, produce("x", "1", false)), comm(contract, produce("x", "2", false)),
			},
			expectedKind: contractSend,
		},
		{
			name: "contract with an unmatched send",
			eventLog: externalapi.EventLog{
				produce("x", "1", false), produce("x", "2", false),
				comm(contract, produce("x", "1", false)),
			},
			expectedKind: mixed,
		},
		{
			name: "contract with a persistent send",
			eventLog: externalapi.EventLog{
				produce("x", "1", true), comm(contract, produce("x", "1", true)),
			},
			expectedKind: mixed,
		},
		{
			name: "persistent read",
			eventLog: externalapi.EventLog{
				consume("x", "p", false), comm(consume("x", "p", false), produce("x", "config", true)),
			},
			expectedKind: persistentRead,
		},
		{
			name: "persistent read with an unmatched consume",
			eventLog: externalapi.EventLog{
				consume("x", "p", false), consume("x", "q", false),
				comm(consume("x", "p", false), produce("x", "config", true)),
			},
			expectedKind: mixed,
		},
	}

	for _, test := range tests {
		footprint := newDeployFootprint(test.eventLog)
		channelFootprint, ok := footprint[*channel("x")]
		if !ok {
			t.Fatalf("%s: channel x is missing from the footprint", test.name)
		}
		if channelFootprint.kind != test.expectedKind {
			t.Errorf("%s: expected kind %s but got %s", test.name, test.expectedKind, channelFootprint.kind)
		}
	}
}

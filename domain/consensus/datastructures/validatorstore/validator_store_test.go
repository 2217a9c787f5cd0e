package validatorstore

import (
	"os"
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/infrastructure/db/database/ldb"
)

func hashOf(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestEquivocations(t *testing.T) {
	path, err := os.MkdirTemp("", "TestEquivocations")
	if err != nil {
		t.Fatalf("MkdirTemp: %s", err)
	}
	defer os.RemoveAll(path)

	db, err := ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	defer db.Close()
	dbManager := database.New(db)

	store, err := New(dbManager)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}

	equivocator := externalapi.ValidatorID{1}
	honest := externalapi.ValidatorID{2}

	stagingArea := model.NewStagingArea()
	store.StageEquivocation(stagingArea, equivocator, 7, hashOf(1), hashOf(2))
	store.StageEquivocation(stagingArea, equivocator, 3, hashOf(3), hashOf(4))
	store.StageEquivocation(stagingArea, equivocator, 7, hashOf(1), hashOf(5))

	if !store.IsEquivocator(stagingArea, equivocator) || store.IsEquivocator(stagingArea, honest) {
		t.Fatalf("Staged evidence was not reflected by IsEquivocator")
	}
	if store.IsEquivocator(model.NewStagingArea(), equivocator) {
		t.Fatalf("Evidence staged in one staging area leaked into another")
	}

	err = database.CommitAllChanges(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("CommitAllChanges: %+v", err)
	}

	reopened, err := New(dbManager)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	for name, s := range map[string]model.ValidatorStore{"committed": store, "reopened": reopened} {
		readArea := model.NewStagingArea()
		equivocations := s.Equivocations(readArea, equivocator)
		if len(equivocations) != 2 {
			t.Fatalf("%s: expected evidence at 2 sequence numbers, got %d", name, len(equivocations))
		}
		if equivocations[0].SequenceNumber != 3 ||
			!externalapi.HashesEqual(equivocations[0].Blocks, []*externalapi.DomainHash{hashOf(3), hashOf(4)}) {

			t.Fatalf("%s: unexpected evidence at sequence number 3: %+v", name, equivocations[0])
		}
		if equivocations[1].SequenceNumber != 7 ||
			!externalapi.HashesEqual(equivocations[1].Blocks, []*externalapi.DomainHash{hashOf(1), hashOf(2), hashOf(5)}) {

			t.Fatalf("%s: unexpected evidence at sequence number 7: %+v", name, equivocations[1])
		}

		equivocators := s.Equivocators(readArea)
		if len(equivocators) != 1 || equivocators[0] != equivocator {
			t.Fatalf("%s: expected %s to be the only equivocator, got %v", name, equivocator, equivocators)
		}
		if len(s.Equivocations(readArea, honest)) != 0 {
			t.Fatalf("%s: expected no evidence against an honest validator", name)
		}
	}

	// Returned evidence is a copy
	readArea := model.NewStagingArea()
	reopened.Equivocations(readArea, equivocator)[0].Blocks[0] = hashOf(9)
	if !reopened.Equivocations(readArea, equivocator)[0].Blocks[0].Equal(hashOf(3)) {
		t.Fatalf("Modifying returned evidence changed the store")
	}
}

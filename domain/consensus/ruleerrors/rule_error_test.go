package ruleerrors

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func TestNewErrMissingParents(t *testing.T) {
	missing, err := externalapi.NewDomainHashFromString(
		"ff00000000000000000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("NewDomainHashFromString: %s", err)
	}
	outer := NewErrMissingParents([]*externalapi.DomainHash{missing})
	expectedOuterErr := "ErrMissingParents: missing the following parent hashes: " +
		"[ff00000000000000000000000000000000000000000000000000000000000000]"

	inner := &ErrMissingParents{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrMissingParents: Outer should contain ErrMissingParents in it")
	}
	if len(inner.MissingParentHashes) != 1 || !inner.MissingParentHashes[0].Equal(missing) {
		t.Fatalf("TestNewErrMissingParents: unexpected missing parents %v", inner.MissingParentHashes)
	}

	rule := &RuleError{}
	if !errors.As(outer, rule) {
		t.Fatal("TestNewErrMissingParents: Outer should contain RuleError in it")
	}
	if rule.message != "ErrMissingParents" {
		t.Fatalf("TestNewErrMissingParents: Expected message = 'ErrMissingParents', found: '%s'", rule.message)
	}
	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestNewErrMissingParents: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedKind FaultKind
		isRuleError  bool
	}{
		{
			name:         "wrapped structural error",
			err:          errors.Wrapf(ErrInvalidParentsRelation, "parent %d", 1),
			expectedKind: StructuralFault,
			isRuleError:  true,
		},
		{
			name:         "equivocation",
			err:          NewErrEquivocation(externalapi.ValidatorID{1}, 5, externalapi.NewZeroHash(), externalapi.NewZeroHash()),
			expectedKind: EquivocationFault,
			isRuleError:  true,
		},
		{
			name:         "deploy execution",
			err:          NewErrDeployExecution(externalapi.NewZeroHash(), 0, externalapi.NewZeroHash(), errors.New("boom")),
			expectedKind: ExecutionFault,
			isRuleError:  true,
		},
		{
			name:         "post-state mismatch",
			err:          errors.Wrapf(ErrPostStateMismatch, "mismatch"),
			expectedKind: ExecutionFault,
			isRuleError:  true,
		},
		{
			name:        "plain error",
			err:         errors.New("not a rule error"),
			isRuleError: false,
		},
	}

	for _, test := range tests {
		kind, ok := KindOf(test.err)
		if ok != test.isRuleError {
			t.Fatalf("%s: expected IsRuleError %t, got %t", test.name, test.isRuleError, ok)
		}
		if ok && kind != test.expectedKind {
			t.Fatalf("%s: expected kind %s, got %s", test.name, test.expectedKind, kind)
		}
	}
}

func TestErrDeployExecutionUnwrap(t *testing.T) {
	collaboratorErr := errors.New("out of phlogiston")
	err := NewErrDeployExecution(externalapi.NewZeroHash(), 3, externalapi.NewZeroHash(), collaboratorErr)
	if !errors.Is(err, collaboratorErr) {
		t.Fatalf("TestErrDeployExecutionUnwrap: expected the collaborator error to be reachable via errors.Is")
	}
	inner := &ErrDeployExecution{}
	if !errors.As(err, inner) || inner.DeployIndex != 3 {
		t.Fatalf("TestErrDeployExecutionUnwrap: unexpected inner %+v", inner)
	}
}

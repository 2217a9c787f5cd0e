package ruleerrors

import (
	"fmt"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// FaultKind classifies a RuleError
type FaultKind byte

const (
	// StructuralFault means the block itself is malformed or does not fit the DAG:
	// unknown parents, cycles, malformed justifications and similar.
	StructuralFault FaultKind = iota

	// EquivocationFault means the block's sender signed two different blocks with
	// the same sequence number.
	EquivocationFault

	// ExecutionFault means replaying the block's deploys failed or did not
	// reproduce the block's claims.
	ExecutionFault
)

var faultKindStrings = map[FaultKind]string{
	StructuralFault:   "StructuralFault",
	EquivocationFault: "EquivocationFault",
	ExecutionFault:    "ExecutionFault",
}

func (k FaultKind) String() string {
	return faultKindStrings[k]
}

// These constants are used to identify a specific RuleError.
var (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = newRuleError("ErrDuplicateBlock", StructuralFault)

	// ErrKnownInvalid indicates that the block was previously found to be invalid.
	ErrKnownInvalid = newRuleError("ErrKnownInvalid", StructuralFault)

	// ErrMalformedBlock indicates a block with missing parts, such as a nil
	// header, parent, justification, bond or deploy
	ErrMalformedBlock = newRuleError("ErrMalformedBlock", StructuralFault)

	// ErrNoParents indicates that a non-genesis block is missing parents
	ErrNoParents = newRuleError("ErrNoParents", StructuralFault)

	// ErrTooManyParents indicates that a block points to more than the
	// maximum number of parents
	ErrTooManyParents = newRuleError("ErrTooManyParents", StructuralFault)

	// ErrTooManyDeploys indicates that a block carries more than the
	// maximum number of deploys
	ErrTooManyDeploys = newRuleError("ErrTooManyDeploys", StructuralFault)

	// ErrDuplicateParents indicates the block references the same parent twice
	ErrDuplicateParents = newRuleError("ErrDuplicateParents", StructuralFault)

	// ErrDAGCycle indicates that adding the block would close a cycle in the DAG
	ErrDAGCycle = newRuleError("ErrDAGCycle", StructuralFault)

	// ErrInvalidAncestor indicates that one of the block's parents or
	// justifications was found to be invalid
	ErrInvalidAncestor = newRuleError("ErrInvalidAncestor", StructuralFault)

	// ErrInvalidParentsRelation indicates that one of the parents of a block
	// is also an ancestor of another parent
	ErrInvalidParentsRelation = newRuleError("ErrInvalidParentsRelation", StructuralFault)

	// ErrBadSignature indicates the block signature does not verify against
	// the sender's key
	ErrBadSignature = newRuleError("ErrBadSignature", StructuralFault)

	// ErrDuplicateJustification indicates the block holds more than one
	// justification for the same validator
	ErrDuplicateJustification = newRuleError("ErrDuplicateJustification", StructuralFault)

	// ErrJustificationSenderMismatch indicates a justification points at a block
	// that was not signed by the justified validator
	ErrJustificationSenderMismatch = newRuleError("ErrJustificationSenderMismatch", StructuralFault)

	// ErrUnexpectedSequenceNumber indicates the block's sequence number does not
	// follow the sender's own justified block
	ErrUnexpectedSequenceNumber = newRuleError("ErrUnexpectedSequenceNumber", StructuralFault)

	// ErrUnexpectedBonds indicates the block's bonds do not match the bonds of
	// its selected parent
	ErrUnexpectedBonds = newRuleError("ErrUnexpectedBonds", StructuralFault)

	// ErrMalformedBonds indicates the bonds list is not sorted, holds duplicates
	// or holds a zero stake
	ErrMalformedBonds = newRuleError("ErrMalformedBonds", StructuralFault)

	// ErrUnexpectedGenesis indicates a parentless block which is not the
	// network's genesis
	ErrUnexpectedGenesis = newRuleError("ErrUnexpectedGenesis", StructuralFault)

	// ErrEventLogsMismatch indicates the supplied event logs do not match the
	// deploys in number, or hold malformed events
	ErrEventLogsMismatch = newRuleError("ErrEventLogsMismatch", StructuralFault)

	// ErrMissingPostState indicates the block has no post-state commitment
	ErrMissingPostState = newRuleError("ErrMissingPostState", StructuralFault)

	// ErrEventLogReplayMismatch indicates replaying a deploy produced a different
	// event log than the one supplied with the block
	ErrEventLogReplayMismatch = newRuleError("ErrEventLogReplayMismatch", ExecutionFault)

	// ErrPostStateMismatch indicates replaying the block's deploys produced a
	// different post-state commitment than the one in its header
	ErrPostStateMismatch = newRuleError("ErrPostStateMismatch", ExecutionFault)
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation
// rules. The caller can use errors.As to determine if a failure was
// specifically due to a rule violation, and KindOf to classify it.
type RuleError struct {
	message string
	kind    FaultKind
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Kind returns the fault kind of the rule error
func (e RuleError) Kind() FaultKind {
	return e.kind
}

func newRuleError(message string, kind FaultKind) RuleError {
	return RuleError{message: message, kind: kind, inner: nil}
}

// KindOf returns the fault kind of err if it is, or wraps, a RuleError
func KindOf(err error) (FaultKind, bool) {
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) {
		return 0, false
	}
	return ruleErr.kind, true
}

// IsRuleError returns whether err is, or wraps, a RuleError
func IsRuleError(err error) bool {
	_, ok := KindOf(err)
	return ok
}

// ErrMissingParents indicates a block points to unknown parent(s) or
// justification(s).
type ErrMissingParents struct {
	MissingParentHashes []*externalapi.DomainHash
}

func (e ErrMissingParents) Error() string {
	return fmt.Sprintf("missing the following parent hashes: %v", e.MissingParentHashes)
}

// NewErrMissingParents creates a new ErrMissingParents error wrapped in a RuleError
func NewErrMissingParents(missingParentHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParents",
		kind:    StructuralFault,
		inner:   ErrMissingParents{missingParentHashes},
	})
}

// ErrEquivocation holds the evidence of a validator signing two blocks at
// the same sequence number.
type ErrEquivocation struct {
	Validator      externalapi.ValidatorID
	SequenceNumber uint64
	ExistingBlock  *externalapi.DomainHash
	NewBlock       *externalapi.DomainHash
}

func (e ErrEquivocation) Error() string {
	return fmt.Sprintf("validator %s signed both %s and %s at sequence number %d",
		e.Validator, e.ExistingBlock, e.NewBlock, e.SequenceNumber)
}

// NewErrEquivocation creates a new ErrEquivocation error wrapped in a RuleError
func NewErrEquivocation(validator externalapi.ValidatorID, sequenceNumber uint64,
	existingBlock, newBlock *externalapi.DomainHash) error {

	return errors.WithStack(RuleError{
		message: "ErrEquivocation",
		kind:    EquivocationFault,
		inner: ErrEquivocation{
			Validator:      validator,
			SequenceNumber: sequenceNumber,
			ExistingBlock:  existingBlock,
			NewBlock:       newBlock,
		},
	})
}

// ErrDeployExecution indicates the execution collaborator failed to run one
// of the block's deploys.
type ErrDeployExecution struct {
	BlockHash   *externalapi.DomainHash
	DeployIndex int
	DeployID    *externalapi.DomainHash
	Err         error
}

func (e ErrDeployExecution) Error() string {
	return fmt.Sprintf("deploy %s (#%d) of block %s failed: %s", e.DeployID, e.DeployIndex, e.BlockHash, e.Err)
}

// Unwrap returns the collaborator's error
func (e ErrDeployExecution) Unwrap() error {
	return e.Err
}

// NewErrDeployExecution creates a new ErrDeployExecution error wrapped in a RuleError
func NewErrDeployExecution(blockHash *externalapi.DomainHash, deployIndex int,
	deployID *externalapi.DomainHash, err error) error {

	return errors.WithStack(RuleError{
		message: "ErrDeployExecution",
		kind:    ExecutionFault,
		inner: ErrDeployExecution{
			BlockHash:   blockHash,
			DeployIndex: deployIndex,
			DeployID:    deployID,
			Err:         err,
		},
	})
}

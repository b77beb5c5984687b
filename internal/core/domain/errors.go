package domain

import (
	"errors"
)

var (
	ErrTooFewCandidates   = NewRevert("Must have at least 2 candidates")
	ErrTimeLimitInPast    = NewRevert("Time limit should be in the future")
	ErrInvalidCandidate   = NewRevert("Invalid candidate index!")
	ErrAlreadyVoted       = NewRevert("Voter already casted the vote!")
	ErrVotingEnded        = NewRevert("Voting session has ended!")
	ErrVotingNotEnded     = NewRevert("Voting session is not ended!")
	ErrArithmeticOverflow = NewPanic(PanicArithmetic)
	ErrReverted           = &RevertError{}
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrModuleNotFound   = errors.New("deployment module not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidTimestamp = errors.New("timestamp must be greater than the latest block timestamp")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrNonceMismatch    = errors.New("nonce mismatch")
	ErrInvalidBytes32   = errors.New("invalid bytes32 string")
)

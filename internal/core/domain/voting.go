package domain

import (
	"maps"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

const MinCandidates = 2

type Candidate struct {
	Name      [32]byte `json:"name"`
	VoteCount uint64   `json:"vote_count"`
}

// Ballot is the state of a Voting contract: a fixed candidate list, a
// deadline and one vote per address.
type Ballot struct {
	candidates []Candidate
	timeLimit  uint64
	voters     map[common.Address]bool
}

func NewBallot(names [][32]byte, timeLimit, now uint64) (*Ballot, error) {
	if len(names) < MinCandidates {
		return nil, ErrTooFewCandidates
	}
	if timeLimit <= now {
		return nil, ErrTimeLimitInPast
	}

	b := &Ballot{
		candidates: make([]Candidate, 0, len(names)),
		timeLimit:  timeLimit,
		voters:     make(map[common.Address]bool),
	}
	for _, name := range names {
		b.candidates = append(b.candidates, Candidate{Name: name})
	}
	return b, nil
}

func (b *Ballot) Vote(voter common.Address, index *big.Int, now uint64) error {
	if b.Ended(now) {
		return ErrVotingEnded
	}
	i, ok := b.index(index)
	if !ok {
		return ErrInvalidCandidate
	}
	if b.voters[voter] {
		return ErrAlreadyVoted
	}

	b.voters[voter] = true
	b.candidates[i].VoteCount++
	return nil
}

// Winner returns the candidate with the most votes once the deadline has
// passed. Ties go to the lowest index.
func (b *Ballot) Winner(now uint64) (int, Candidate, error) {
	if !b.Ended(now) {
		return 0, Candidate{}, ErrVotingNotEnded
	}

	winner := 0
	for i, c := range b.candidates {
		if c.VoteCount > b.candidates[winner].VoteCount {
			winner = i
		}
	}
	return winner, b.candidates[winner], nil
}

func (b *Ballot) Ended(now uint64) bool {
	return now >= b.timeLimit
}

func (b *Ballot) Candidate(index *big.Int) (Candidate, error) {
	i, ok := b.index(index)
	if !ok {
		return Candidate{}, NewPanic(PanicOutOfBounds)
	}
	return b.candidates[i], nil
}

func (b *Ballot) Candidates() []Candidate {
	return slices.Clone(b.candidates)
}

func (b *Ballot) Len() int {
	return len(b.candidates)
}

func (b *Ballot) TimeLimit() uint64 {
	return b.timeLimit
}

func (b *Ballot) HasVoted(voter common.Address) bool {
	return b.voters[voter]
}

func (b *Ballot) Clone() *Ballot {
	return &Ballot{
		candidates: slices.Clone(b.candidates),
		timeLimit:  b.timeLimit,
		voters:     maps.Clone(b.voters),
	}
}

func (b *Ballot) index(index *big.Int) (int, bool) {
	if index == nil || index.Sign() < 0 || !index.IsUint64() {
		return 0, false
	}
	i := index.Uint64()
	if i >= uint64(len(b.candidates)) {
		return 0, false
	}
	return int(i), true
}

// VotingStatus is a read-only view of a deployed Voting contract.
type VotingStatus struct {
	Address    common.Address `json:"address"`
	Candidates []Candidate    `json:"candidates"`
	TimeLimit  uint64         `json:"time_limit"`
	Ended      bool           `json:"ended"`
}

// VoteTally is the per-candidate vote count derived from Voted events.
type VoteTally struct {
	ChainID        uint64         `json:"chain_id"`
	Contract       common.Address `json:"contract"`
	CandidateIndex uint64         `json:"candidate_index"`
	VoteCount      uint64         `json:"vote_count"`
	LastBlock      uint64         `json:"last_block"`
}

package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoDays = 2 * 24 * 60 * 60

var (
	alice = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	carol = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	dave  = common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65")
)

func newTestBallot(t *testing.T, now uint64) *Ballot {
	t.Helper()

	names, err := EncodeBytes32Strings("John Doe", "Martin Luther", "Lucia Morini")
	require.NoError(t, err)
	b, err := NewBallot(names, now+twoDays, now)
	require.NoError(t, err)
	return b
}

func TestNewBallot(t *testing.T) {
	names, err := EncodeBytes32Strings("John Doe", "Martin Luther")
	require.NoError(t, err)

	tests := []struct {
		name      string
		names     [][32]byte
		timeLimit uint64
		now       uint64
		wantErr   error
	}{
		{"two candidates", names, 200, 100, nil},
		{"single candidate", names[:1], 200, 100, ErrTooFewCandidates},
		{"no candidates", nil, 200, 100, ErrTooFewCandidates},
		{"limit in the past", names, 50, 100, ErrTimeLimitInPast},
		{"limit equal to now", names, 100, 100, ErrTimeLimitInPast},
		{"candidate count is checked first", names[:1], 50, 100, ErrTooFewCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBallot(tt.names, tt.timeLimit, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.names), b.Len())
			assert.Equal(t, tt.timeLimit, b.TimeLimit())
		})
	}
}

func TestBallotVote(t *testing.T) {
	const now = 1_000
	b := newTestBallot(t, now)

	require.NoError(t, b.Vote(alice, big.NewInt(0), now+1))
	require.NoError(t, b.Vote(bob, big.NewInt(1), now+2))

	assert.True(t, b.HasVoted(alice))
	assert.False(t, b.HasVoted(carol))

	c, err := b.Candidate(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.VoteCount)

	t.Run("invalid index", func(t *testing.T) {
		assert.ErrorIs(t, b.Vote(carol, big.NewInt(3), now+3), ErrInvalidCandidate)
		assert.ErrorIs(t, b.Vote(carol, big.NewInt(100), now+3), ErrInvalidCandidate)
		assert.ErrorIs(t, b.Vote(carol, big.NewInt(-1), now+3), ErrInvalidCandidate)
		assert.ErrorIs(t, b.Vote(carol, nil, now+3), ErrInvalidCandidate)
		assert.False(t, b.HasVoted(carol))
	})

	t.Run("double vote", func(t *testing.T) {
		assert.ErrorIs(t, b.Vote(bob, big.NewInt(2), now+3), ErrAlreadyVoted)
	})

	t.Run("after the deadline", func(t *testing.T) {
		assert.ErrorIs(t, b.Vote(carol, big.NewInt(2), now+twoDays), ErrVotingEnded)
		// the deadline is checked before the voter
		assert.ErrorIs(t, b.Vote(alice, big.NewInt(7), now+twoDays+1), ErrVotingEnded)
	})
}

func TestBallotWinner(t *testing.T) {
	const now = 1_000
	b := newTestBallot(t, now)

	require.NoError(t, b.Vote(alice, big.NewInt(0), now+1))
	require.NoError(t, b.Vote(bob, big.NewInt(1), now+2))
	require.NoError(t, b.Vote(carol, big.NewInt(2), now+3))
	require.NoError(t, b.Vote(dave, big.NewInt(0), now+4))

	_, _, err := b.Winner(now + 5)
	assert.ErrorIs(t, err, ErrVotingNotEnded)

	i, c, err := b.Winner(now + twoDays)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	name, err := DecodeBytes32String(c.Name)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", name)
	assert.Equal(t, uint64(2), c.VoteCount)
}

func TestBallotWinnerTieGoesToLowestIndex(t *testing.T) {
	const now = 1_000
	b := newTestBallot(t, now)

	require.NoError(t, b.Vote(alice, big.NewInt(2), now+1))
	require.NoError(t, b.Vote(bob, big.NewInt(1), now+2))

	i, _, err := b.Winner(now + twoDays)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	empty := newTestBallot(t, now)
	i, _, err = empty.Winner(now + twoDays)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
}

func TestBallotCandidateOutOfBounds(t *testing.T) {
	b := newTestBallot(t, 1_000)

	_, err := b.Candidate(big.NewInt(3))
	assert.ErrorIs(t, err, NewPanic(PanicOutOfBounds))
}

func TestBallotClone(t *testing.T) {
	const now = 1_000
	b := newTestBallot(t, now)
	require.NoError(t, b.Vote(alice, big.NewInt(0), now+1))

	clone := b.Clone()
	require.NoError(t, clone.Vote(bob, big.NewInt(0), now+2))

	assert.False(t, b.HasVoted(bob))
	assert.Equal(t, uint64(1), b.Candidates()[0].VoteCount)
	assert.Equal(t, uint64(2), clone.Candidates()[0].VoteCount)
}

package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

const twoDays = 2 * 24 * 60 * 60

type votingFixture struct {
	voting common.Address
	owner  common.Address
	voters []common.Address
}

func TestVoting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	loader := NewFixtureLoader(env.node)
	clock := NewTimeHelper(env.node)
	service := NewVotingService(env.node, env.artifacts)

	candidates, err := domain.EncodeBytes32Strings("John Doe", "Martin Luther", "Lucia Morini")
	require.NoError(t, err)

	deployWith := func(names [][32]byte, offset int64) Fixture[votingFixture] {
		return func(ctx context.Context) (votingFixture, error) {
			latest, err := clock.Latest(ctx)
			if err != nil {
				return votingFixture{}, err
			}
			addr, err := service.Deploy(ctx, ports.DeployVotingInput{
				From:       env.accounts[0],
				Candidates: names,
				TimeLimit:  uint64(int64(latest) + offset),
			})
			if err != nil {
				return votingFixture{}, err
			}
			return votingFixture{voting: addr, owner: env.accounts[0], voters: env.accounts[1:5]}, nil
		}
	}
	deployVotingContract := deployWith(candidates, twoDays)

	vote := func(t *testing.T, f votingFixture, voter int, index int64) error {
		t.Helper()
		return service.Vote(ctx, ports.VoteInput{Contract: f.voting, Voter: f.voters[voter], Index: big.NewInt(index)})
	}

	t.Run("deployment", func(t *testing.T) {
		t.Run("deploys a contract with 3 candidates", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			status, err := service.Status(ctx, f.voting)
			require.NoError(t, err)
			assert.Len(t, status.Candidates, 3)
			assert.False(t, status.Ended)
		})

		t.Run("rejects a single candidate list", func(t *testing.T) {
			_, err := LoadFixture(ctx, loader, "deployVotingContractWithOneCandidate", deployWith(candidates[:1], twoDays))
			assert.ErrorIs(t, err, domain.ErrTooFewCandidates)
			assert.EqualError(t, err, "execution reverted: Must have at least 2 candidates")
		})

		t.Run("rejects a time limit in the past", func(t *testing.T) {
			_, err := LoadFixture(ctx, loader, "deployVotingContractWithTimestampInThePast", deployWith(candidates, -twoDays))
			assert.ErrorIs(t, err, domain.ErrTimeLimitInPast)
		})
	})

	t.Run("voting sessions", func(t *testing.T) {
		t.Run("voters vote for their candidates", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			require.NoError(t, vote(t, f, 0, 0))
			require.NoError(t, vote(t, f, 1, 1))
			require.NoError(t, vote(t, f, 2, 2))
			require.NoError(t, vote(t, f, 3, 0))

			status, err := service.Status(ctx, f.voting)
			require.NoError(t, err)
			assert.Equal(t, uint64(2), status.Candidates[0].VoteCount)
			assert.Equal(t, uint64(1), status.Candidates[1].VoteCount)
			assert.Equal(t, uint64(1), status.Candidates[2].VoteCount)
		})

		t.Run("fixture state is restored between loads", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			voted, err := service.HasVoted(ctx, f.voting, f.voters[0])
			require.NoError(t, err)
			assert.False(t, voted)
		})

		t.Run("rejects an invalid candidate index", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			assert.ErrorIs(t, vote(t, f, 0, int64(len(candidates))), domain.ErrInvalidCandidate)
			assert.ErrorIs(t, vote(t, f, 0, 100), domain.ErrInvalidCandidate)
		})

		t.Run("rejects a second vote", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			require.NoError(t, vote(t, f, 0, 0))
			require.NoError(t, vote(t, f, 1, 1))
			assert.ErrorIs(t, vote(t, f, 1, 2), domain.ErrAlreadyVoted)
		})

		t.Run("rejects votes after the time limit", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			require.NoError(t, vote(t, f, 0, 0))
			require.NoError(t, vote(t, f, 1, 1))

			_, err = clock.Increase(ctx, twoDays)
			require.NoError(t, err)

			assert.ErrorIs(t, vote(t, f, 2, 2), domain.ErrVotingEnded)
		})

		t.Run("returns the winner", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			require.NoError(t, vote(t, f, 0, 0))
			require.NoError(t, vote(t, f, 1, 1))
			require.NoError(t, vote(t, f, 2, 2))
			require.NoError(t, vote(t, f, 3, 0))

			_, err = clock.Increase(ctx, twoDays)
			require.NoError(t, err)

			winner, err := service.Winner(ctx, f.voting)
			require.NoError(t, err)
			assert.Equal(t, candidates[0], winner)

			status, err := service.Status(ctx, f.voting)
			require.NoError(t, err)
			assert.True(t, status.Ended)
		})

		t.Run("winner reverts before the time limit", func(t *testing.T) {
			f, err := LoadFixture(ctx, loader, "deployVotingContract", deployVotingContract)
			require.NoError(t, err)

			require.NoError(t, vote(t, f, 0, 0))
			require.NoError(t, vote(t, f, 1, 1))
			require.NoError(t, vote(t, f, 2, 2))
			require.NoError(t, vote(t, f, 3, 0))

			_, err = service.Winner(ctx, f.voting)
			assert.ErrorIs(t, err, domain.ErrVotingNotEnded)
			assert.EqualError(t, err, "execution reverted: Voting session is not ended!")
		})
	})
}

func TestVotingServiceErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	service := NewVotingService(env.node, env.artifacts)

	_, err := service.Status(ctx, common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, domain.ErrContractNotFound)

	err = service.Vote(ctx, ports.VoteInput{Contract: common.HexToAddress("0x01"), Voter: env.accounts[1]})
	assert.ErrorIs(t, err, domain.ErrInvalidCandidate)
}

package contracts

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type votingFactory struct {
	artifact   *domain.Artifact
	dispatcher *dispatcher[*voting]
}

func newVotingFactory(artifact *domain.Artifact) (ports.ContractFactory, error) {
	d, err := newDispatcher(artifact.ABI, map[string]func(*voting, *env) ([]any, error){
		"vote":            (*voting).vote,
		"winner":          (*voting).winner,
		"candidates":      (*voting).candidate,
		"candidatesCount": (*voting).candidatesCount,
		"timeLimit":       (*voting).timeLimit,
		"voters":          (*voting).voters,
	})
	if err != nil {
		return nil, err
	}
	return &votingFactory{artifact: artifact, dispatcher: d}, nil
}

func (f *votingFactory) Name() string {
	return domain.VotingContract
}

func (f *votingFactory) Deploy(ctx ports.CallContext, args []byte) (ports.Contract, []*types.Log, error) {
	out, err := f.artifact.ABI.Constructor.Inputs.Unpack(args)
	if err != nil {
		return nil, nil, domain.ErrReverted
	}
	names, ok := out[0].([][32]byte)
	if !ok {
		return nil, nil, domain.ErrReverted
	}
	limit, ok := out[1].(*big.Int)
	if !ok {
		return nil, nil, domain.ErrReverted
	}

	// a limit beyond uint64 is always in the future
	timeLimit := uint64(math.MaxUint64)
	if limit.IsUint64() {
		timeLimit = limit.Uint64()
	}

	ballot, err := domain.NewBallot(names, timeLimit, ctx.Timestamp)
	if err != nil {
		return nil, nil, err
	}
	return &voting{ballot: ballot, dispatcher: f.dispatcher}, nil, nil
}

type voting struct {
	ballot     *domain.Ballot
	dispatcher *dispatcher[*voting]
}

func (v *voting) Name() string {
	return domain.VotingContract
}

func (v *voting) Invoke(ctx ports.CallContext, input []byte) ([]byte, []*types.Log, error) {
	return v.dispatcher.invoke(v, ctx, input)
}

func (v *voting) Clone() ports.Contract {
	return &voting{ballot: v.ballot.Clone(), dispatcher: v.dispatcher}
}

func (v *voting) vote(e *env) ([]any, error) {
	index := e.args[0].(*big.Int)
	if err := v.ballot.Vote(e.Caller, index, e.Timestamp); err != nil {
		return nil, err
	}
	e.emit(domain.VotedEvent, common.BytesToHash(e.Caller.Bytes()), common.BigToHash(index))
	return nil, nil
}

func (v *voting) winner(e *env) ([]any, error) {
	_, c, err := v.ballot.Winner(e.Timestamp)
	if err != nil {
		return nil, err
	}
	return []any{c.Name}, nil
}

func (v *voting) candidate(e *env) ([]any, error) {
	c, err := v.ballot.Candidate(e.args[0].(*big.Int))
	if err != nil {
		return nil, err
	}
	return []any{c.Name, new(big.Int).SetUint64(c.VoteCount)}, nil
}

func (v *voting) candidatesCount(*env) ([]any, error) {
	return []any{big.NewInt(int64(v.ballot.Len()))}, nil
}

func (v *voting) timeLimit(*env) ([]any, error) {
	return []any{new(big.Int).SetUint64(v.ballot.TimeLimit())}, nil
}

func (v *voting) voters(e *env) ([]any, error) {
	return []any{v.ballot.HasVoted(e.args[0].(common.Address))}, nil
}

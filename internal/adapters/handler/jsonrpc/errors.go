package jsonrpc

import (
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

// errCodeReverted is the error code of a reverted execution. The revert
// payload travels hex encoded in the error data.
const errCodeReverted = 3

type revertError struct {
	err *domain.RevertError
}

func (e *revertError) Error() string          { return e.err.Error() }
func (e *revertError) ErrorCode() int         { return errCodeReverted }
func (e *revertError) ErrorData() interface{} { return hexutil.Encode(e.err.Data()) }

type invalidParamsError struct {
	msg string
}

func (e *invalidParamsError) Error() string  { return e.msg }
func (e *invalidParamsError) ErrorCode() int { return -32602 }

// toRPCError attaches error codes to the errors clients inspect.
func toRPCError(err error) error {
	if err == nil {
		return nil
	}
	var revert *domain.RevertError
	if errors.As(err, &revert) {
		return &revertError{err: revert}
	}
	if errors.Is(err, domain.ErrInvalidTimestamp) {
		return &invalidParamsError{msg: err.Error()}
	}
	return err
}

package domain

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Panic codes raised by the compiler-inserted checks.
const (
	PanicGeneric      uint64 = 0x00
	PanicAssert       uint64 = 0x01
	PanicArithmetic   uint64 = 0x11
	PanicDivideByZero uint64 = 0x12
	PanicOutOfBounds  uint64 = 0x32
)

var (
	errorSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	panicSelector = crypto.Keccak256([]byte("Panic(uint256)"))[:4]

	stringArgs  = mustArguments("string")
	uint256Args = mustArguments("uint256")
)

var panicReasons = map[uint64]string{
	PanicGeneric:      "generic panic",
	PanicAssert:       "assert(false)",
	PanicArithmetic:   "arithmetic underflow or overflow",
	PanicDivideByZero: "division or modulo by zero",
	PanicOutOfBounds:  "array out-of-bounds access",
}

// RevertError is a rejected contract execution. A zero value is a revert
// without reason.
type RevertError struct {
	Reason    string
	Panic     bool
	PanicCode uint64
}

func NewRevert(reason string) *RevertError {
	return &RevertError{Reason: reason}
}

func NewPanic(code uint64) *RevertError {
	reason, ok := panicReasons[code]
	if !ok {
		reason = fmt.Sprintf("unknown panic code: %#x", code)
	}
	return &RevertError{Reason: reason, Panic: true, PanicCode: code}
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// Is matches any revert carrying the same reason, so errors decoded from a
// remote node compare equal to the package sentinels.
func (e *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason && e.Panic == t.Panic && e.PanicCode == t.PanicCode
}

// Data returns the ABI encoded revert payload.
func (e *RevertError) Data() []byte {
	switch {
	case e.Panic:
		packed, err := uint256Args.Pack(new(big.Int).SetUint64(e.PanicCode))
		if err != nil {
			return nil
		}
		return append(bytes.Clone(panicSelector), packed...)
	case e.Reason != "":
		packed, err := stringArgs.Pack(e.Reason)
		if err != nil {
			return nil
		}
		return append(bytes.Clone(errorSelector), packed...)
	}
	return nil
}

// DecodeRevert turns a revert payload back into a RevertError.
func DecodeRevert(data []byte) (*RevertError, error) {
	if len(data) == 0 {
		return ErrReverted, nil
	}
	if len(data) >= 4 && bytes.Equal(data[:4], panicSelector) {
		out, err := uint256Args.Unpack(data[4:])
		if err != nil {
			return nil, fmt.Errorf("failed to unpack panic code: %w", err)
		}
		code, ok := out[0].(*big.Int)
		if !ok || !code.IsUint64() {
			return nil, fmt.Errorf("invalid panic code %v", out[0])
		}
		return NewPanic(code.Uint64()), nil
	}
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		return nil, err
	}
	return NewRevert(reason), nil
}

func mustArguments(typ string) abi.Arguments {
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: t}}
}

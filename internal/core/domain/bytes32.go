package domain

import (
	"bytes"
	"fmt"
)

// EncodeBytes32String packs a short UTF-8 string into a null terminated
// bytes32 value.
func EncodeBytes32String(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) > 31 {
		return out, fmt.Errorf("%w: %q is longer than 31 bytes", ErrInvalidBytes32, s)
	}
	copy(out[:], s)
	return out, nil
}

func DecodeBytes32String(b [32]byte) (string, error) {
	if b[31] != 0 {
		return "", fmt.Errorf("%w: no null terminator", ErrInvalidBytes32)
	}
	n := bytes.IndexByte(b[:], 0)
	return string(b[:n]), nil
}

func EncodeBytes32Strings(names ...string) ([][32]byte, error) {
	out := make([][32]byte, 0, len(names))
	for _, name := range names {
		b, err := EncodeBytes32String(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Package bcd packs and unpacks unsigned integers as binary-coded decimal,
// two digits per byte, in either digit order.
package bcd

import (
	"errors"
	"fmt"
)

var (
	// ErrRange is returned when a value does not fit in the requested digit count.
	ErrRange = errors.New("bcd: value out of range")
	// ErrMalformed is returned when a nibble holds a value above 9.
	ErrMalformed = errors.New("bcd: malformed digit")
	// ErrInvalidDigits is returned for odd, zero or oversized digit counts.
	ErrInvalidDigits = errors.New("bcd: invalid digit count")
)

// MaxDigits bounds the digit count so that 10^digits fits in a uint64.
const MaxDigits = 18

var pow10 [MaxDigits + 1]uint64

func init() {
	pow10[0] = 1
	for i := 1; i <= MaxDigits; i++ {
		pow10[i] = pow10[i-1] * 10
	}
}

func checkDigits(digits int) error {
	if digits <= 0 || digits%2 != 0 || digits > MaxDigits {
		return fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}
	return nil
}

// EncodeLE encodes value into digits/2 bytes, least significant pair first.
// The low nibble of each byte carries the lower digit of the pair.
func EncodeLE(value uint64, digits int) ([]byte, error) {
	if err := checkDigits(digits); err != nil {
		return nil, err
	}
	if value >= pow10[digits] {
		return nil, fmt.Errorf("%w: %d needs more than %d digits", ErrRange, value, digits)
	}

	out := make([]byte, digits/2)
	for i := range out {
		lo := byte(value % 10)
		value /= 10
		hi := byte(value % 10)
		value /= 10
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// EncodeBE encodes value into digits/2 bytes, most significant digit first.
func EncodeBE(value uint64, digits int) ([]byte, error) {
	out, err := EncodeLE(value, digits)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DecodeLE decodes the first digits/2 bytes of b as little-endian BCD.
func DecodeLE(b []byte, digits int) (uint64, error) {
	if err := checkDigits(digits); err != nil {
		return 0, err
	}
	n := digits / 2
	if len(b) < n {
		return 0, fmt.Errorf("%w: %d digits from %d bytes", ErrInvalidDigits, digits, len(b))
	}

	var value uint64
	for i := n - 1; i >= 0; i-- {
		d, err := pair(b[i])
		if err != nil {
			return 0, err
		}
		value = value*100 + d
	}
	return value, nil
}

// DecodeBE decodes the first digits/2 bytes of b as big-endian BCD.
func DecodeBE(b []byte, digits int) (uint64, error) {
	if err := checkDigits(digits); err != nil {
		return 0, err
	}
	n := digits / 2
	if len(b) < n {
		return 0, fmt.Errorf("%w: %d digits from %d bytes", ErrInvalidDigits, digits, len(b))
	}

	var value uint64
	for i := 0; i < n; i++ {
		d, err := pair(b[i])
		if err != nil {
			return 0, err
		}
		value = value*100 + d
	}
	return value, nil
}

func pair(b byte) (uint64, error) {
	hi, lo := b>>4, b&0x0f
	if hi > 9 || lo > 9 {
		return 0, fmt.Errorf("%w: 0x%02x", ErrMalformed, b)
	}
	return uint64(hi)*10 + uint64(lo), nil
}

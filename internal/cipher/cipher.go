// Package cipher implements the classical ciphers used by the puzzle set.
// They are reversible toys, not security primitives.
package cipher

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDecode = errors.New("cipher: decode failed")

const alphabetSize = 26

func keyShifts(key string) ([]int, error) {
	key = strings.ToUpper(key)
	if key == "" {
		return nil, fmt.Errorf("%w: empty vigenere key", ErrDecode)
	}
	shifts := make([]int, 0, len(key))
	for _, r := range key {
		if r < 'A' || r > 'Z' {
			return nil, fmt.Errorf("%w: key character %q is not a letter", ErrDecode, r)
		}
		shifts = append(shifts, int(r-'A'))
	}
	return shifts, nil
}

func vigenere(text, key string, sign int) (string, error) {
	shifts, err := keyShifts(key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(text))
	keyIdx := 0
	for _, r := range strings.ToUpper(text) {
		if r < 'A' || r > 'Z' {
			b.WriteRune(r)
			continue
		}
		shift := shifts[keyIdx%len(shifts)]
		idx := (int(r-'A') + sign*shift + alphabetSize) % alphabetSize
		b.WriteRune(rune('A' + idx))
		keyIdx++
	}
	return b.String(), nil
}

// DecodeVigenere uppercases ciphertext and shifts every letter back by the
// matching key letter. Non-letters are copied and do not consume key letters.
func DecodeVigenere(ciphertext, key string) (string, error) {
	return vigenere(ciphertext, key, -1)
}

func EncodeVigenere(plaintext, key string) (string, error) {
	return vigenere(plaintext, key, 1)
}

// railPattern returns the rail index visited at each position of a zig-zag
// over n characters.
func railPattern(n, rails int) []int {
	pattern := make([]int, n)
	row, direction := 0, 1
	for i := 0; i < n; i++ {
		pattern[i] = row
		row += direction
		if row == rails-1 || row == 0 {
			direction = -direction
		}
	}
	return pattern
}

func checkRails(rails int) error {
	if rails <= 0 {
		return fmt.Errorf("%w: rail count must be positive, got %d", ErrDecode, rails)
	}
	return nil
}

func EncodeRailFence(plaintext string, rails int) (string, error) {
	if err := checkRails(rails); err != nil {
		return "", err
	}
	if rails == 1 {
		return plaintext, nil
	}
	src := []rune(plaintext)
	pattern := railPattern(len(src), rails)
	out := make([]rune, 0, len(src))
	for r := 0; r < rails; r++ {
		for i, row := range pattern {
			if row == r {
				out = append(out, src[i])
			}
		}
	}
	return string(out), nil
}

// DecodeRailFence fills the zig-zag positions rail by rail with the
// ciphertext, then reads them back in traversal order.
func DecodeRailFence(ciphertext string, rails int) (string, error) {
	if err := checkRails(rails); err != nil {
		return "", err
	}
	if rails == 1 {
		return ciphertext, nil
	}
	src := []rune(ciphertext)
	pattern := railPattern(len(src), rails)
	out := make([]rune, len(src))
	next := 0
	for r := 0; r < rails; r++ {
		for i, row := range pattern {
			if row == r {
				out[i] = src[next]
				next++
			}
		}
	}
	return string(out), nil
}

package validator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	catalog "github.com/CodeAndHammer/ctfconsole/internal/catalog"
	cipher "github.com/CodeAndHammer/ctfconsole/internal/cipher"
	models "github.com/CodeAndHammer/ctfconsole/internal/models"
	util "github.com/CodeAndHammer/ctfconsole/internal/util"
)

var ErrNotFound = errors.New("challenge not found")

// Validate reports whether answer solves the named challenge. An unknown
// challenge yields ErrNotFound rather than false.
func Validate(cat *catalog.Catalog, name, answer string) (bool, error) {
	ch, ok := cat.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return Check(ch, answer), nil
}

// Check compares answer against a resolved challenge. Comparisons are exact.
func Check(ch models.Challenge, answer string) bool {
	switch ch.Kind {
	case models.KindBase64:
		return checkBase64(ch, answer)
	case models.KindVigenere, models.KindRailFence:
		// Both paths stay: the stored answer and the live decode can drift apart.
		if answer == ch.Answer {
			return true
		}
		decoded, err := liveDecode(ch)
		if err != nil {
			util.LogWarn("Live decode for challenge %s failed: %v", ch.Name, err)
			return false
		}
		return answer == decoded
	default:
		return answer == ch.Answer
	}
}

func checkBase64(ch models.Challenge, answer string) bool {
	decoded, err := base64.StdEncoding.DecodeString(answer)
	if err != nil || !utf8.Valid(decoded) {
		return answer == ch.Answer
	}
	return string(decoded) == ch.Answer
}

func liveDecode(ch models.Challenge) (string, error) {
	if ch.Cipher == nil {
		return "", fmt.Errorf("%w: challenge %s has no cipher parameters", cipher.ErrDecode, ch.Name)
	}
	switch ch.Kind {
	case models.KindVigenere:
		return cipher.DecodeVigenere(ch.Cipher.Ciphertext, ch.Cipher.Key)
	case models.KindRailFence:
		return cipher.DecodeRailFence(ch.Cipher.Ciphertext, ch.Cipher.Rails)
	}
	return "", fmt.Errorf("%w: kind %s has no decoder", cipher.ErrDecode, ch.Kind)
}

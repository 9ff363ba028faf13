package models

import "time"

type ChallengeKind string

const (
	KindPlain     ChallengeKind = "plain"
	KindBase64    ChallengeKind = "base64"
	KindVigenere  ChallengeKind = "vigenere"
	KindRailFence ChallengeKind = "railfence"
)

// CipherParams are the fixed inputs used to re-derive a cipher challenge's
// plaintext at validation time.
type CipherParams struct {
	Ciphertext string
	Key        string
	Rails      int
}

type Challenge struct {
	Name     string        `json:"name"`
	Kind     ChallengeKind `json:"kind"`
	Question string        `json:"question"`
	Answer   string        `json:"-"`
	Flag     string        `json:"-"`
	Hint     string        `json:"hint"`
	Cipher   *CipherParams `json:"-"`
}

// ClientState tracks one client's request window and lifetime invalid count.
type ClientState struct {
	WindowStart  time.Time `json:"windowStart"`
	RequestCount int       `json:"requestCount"`
	InvalidCount int       `json:"invalidCount"`
}

type SubmitResponse struct {
	Response string `json:"response"`
}

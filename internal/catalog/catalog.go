package catalog

import (
	"slices"

	models "github.com/CodeAndHammer/ctfconsole/internal/models"
)

// Catalog is an immutable, ordered set of challenges. It is safe for
// concurrent reads because nothing mutates it after New returns.
type Catalog struct {
	order  []string
	byName map[string]models.Challenge
}

func New(challenges ...models.Challenge) *Catalog {
	c := &Catalog{
		order:  make([]string, 0, len(challenges)),
		byName: make(map[string]models.Challenge, len(challenges)),
	}
	for _, ch := range challenges {
		if _, dup := c.byName[ch.Name]; dup {
			continue
		}
		c.order = append(c.order, ch.Name)
		c.byName[ch.Name] = ch
	}
	return c
}

// Lookup matches the name exactly; callers lowercase user input first.
func (c *Catalog) Lookup(name string) (models.Challenge, bool) {
	ch, ok := c.byName[name]
	return ch, ok
}

func (c *Catalog) Names() []string {
	return slices.Clone(c.order)
}

func (c *Catalog) Len() int {
	return len(c.order)
}

func Default() *Catalog {
	return New(
		models.Challenge{
			Name:     "puzzle",
			Kind:     models.KindPlain,
			Question: "What is the capital of France?",
			Answer:   "Paris",
			Flag:     "CTF{Paris}",
			Hint:     "The answer is a well-known European city.",
		},
		models.Challenge{
			Name:     "base64",
			Kind:     models.KindBase64,
			Question: "Decode this Base64 string: Q1RGe0Jhc2U2NEZsYWd9",
			Answer:   "CTF{Base64Flag}",
			Flag:     "CTF{Base64Flag}",
			Hint:     "Use a Base64 decoder (e.g., the base64 command line tool or online tools).",
		},
		models.Challenge{
			Name:     "vigenere",
			Kind:     models.KindVigenere,
			Question: "Decode this Vigenère cipher: FJHLTKAF with key: KEY",
			Answer:   "CTF{VigFlag}",
			Flag:     "CTF{VigFlag}",
			Hint:     "Use the Vigenère cipher with the provided key. Letters only, case-insensitive.",
			Cipher:   &models.CipherParams{Ciphertext: "FJHLTKAF", Key: "KEY"},
		},
		models.Challenge{
			Name:     "railfence",
			Kind:     models.KindRailFence,
			Question: "Decode this Rail Fence cipher (3 rails): CcrctT{ye_euiyFbsr}",
			Answer:   "CTF{cyber_security}",
			Flag:     "CTF{cyber_security}",
			Hint:     "Rearrange the text using a Rail Fence cipher with 3 rails.",
			Cipher:   &models.CipherParams{Ciphertext: "CcrctT{ye_euiyFbsr}", Rails: 3},
		},
		models.Challenge{
			Name:     "stego",
			Kind:     models.KindPlain,
			Question: "Extract the hidden flag from this JPG's LSB data: '01000011 01010100 01000110 01111011 01010011 01110100 01100101 01100111 01101111 01000110 01101100 01100001 01100111 01111101'. Convert binary to ASCII.",
			Answer:   "CTF{StegoFlag}",
			Flag:     "CTF{StegoFlag}",
			Hint:     "Convert each 8-bit binary sequence to ASCII characters.",
		},
		models.Challenge{
			Name:     "forensics",
			Kind:     models.KindPlain,
			Question: "Convert this PDF text extract: 'Metadata: Author=CTF{ForensicFlag}, Date=2025-06-23'. Extract the flag.",
			Answer:   "CTF{ForensicFlag}",
			Flag:     "CTF{ForensicFlag}",
			Hint:     "Look for a string in the format CTF{...} in the simulated PDF metadata.",
		},
	)
}

package league

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// InviteCodeLength is the number of characters in a generated code.
	InviteCodeLength = 8
	// InviteCodeAlphabet is the set codes are drawn from. Codes are always upper case.
	InviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeSource draws invite code candidates.
type CodeSource interface {
	NextCode() (string, error)
}

// RandomCodeSource draws codes uniformly from InviteCodeAlphabet.
type RandomCodeSource struct {
	mu  sync.Mutex
	r   io.Reader
	buf []byte
}

// NewRandomCodeSource returns a source reading entropy from r, or from
// crypto/rand when r is nil.
func NewRandomCodeSource(r io.Reader) *RandomCodeSource {
	if r == nil {
		r = rand.Reader
	}
	return &RandomCodeSource{r: r, buf: make([]byte, InviteCodeLength*2)}
}

// 252 is the largest multiple of 36 that fits a byte; larger values are
// rejected so every character is equally likely.
const rejectAbove = 256 - 256%len(InviteCodeAlphabet)

// NextCode returns a fresh candidate.
func (s *RandomCodeSource) NextCode() (string, error) {
	if s == nil {
		return "", errors.New("nil code source")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, 0, InviteCodeLength)
	for len(out) < InviteCodeLength {
		if _, err := io.ReadFull(s.r, s.buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range s.buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, InviteCodeAlphabet[int(b)%len(InviteCodeAlphabet)])
			if len(out) == InviteCodeLength {
				break
			}
		}
	}
	return string(out), nil
}

// ValidCode reports whether code has the generated shape.
func ValidCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

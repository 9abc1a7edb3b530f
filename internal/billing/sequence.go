package billing

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// InitialToken is the first bill number ever issued.
const InitialToken = "AA1"

var tokenPattern = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// NextToken advances a bill-number token: AA1, AA2 ... AA9, AB1 ... AZ9,
// BA1 ... ZZ9, AAA1 and so on without end.
// The digit runs 1-9 only (no zero); when it passes 9 it resets to 1 and the
// letters tick over like a base-26 odometer, growing a new leading 'A' once
// every letter has wrapped past 'Z'.
// Anything that does not look like letters-then-digits resets to "AA1".
func NextToken(current string) string {
	match := tokenPattern.FindStringSubmatch(current)
	if match == nil {
		return InitialToken
	}

	letters, digit := match[1], match[2]

	// Bump the numeric part first
	num := 0
	for _, d := range digit {
		num = num*10 + int(d-'0')
	}
	num++
	if num <= 9 {
		return fmt.Sprintf("%s%d", letters, num)
	}

	// Digit overflowed: carry into the letters, digit restarts at 1
	return incrementLetters(letters) + "1"
}

// incrementLetters ticks the alphabetic prefix like an odometer over A-Z.
func incrementLetters(letters string) string {
	arr := []byte(letters)
	for i := len(arr) - 1; i >= 0; i-- {
		if arr[i] == 'Z' {
			arr[i] = 'A'
			continue
		}
		arr[i]++
		return string(arr)
	}
	// Every letter was Z: grow the prefix
	return "A" + string(arr)
}

// TokenStore persists the last-issued bill number between sessions.
// LoadToken returns "" when no token has ever been saved.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
}

// LockingTokenStore is a TokenStore that can run the whole read-advance-write
// under its own exclusion, so two devices issuing at once cannot both read the
// same token. advance gets the stored token ("" when none exists) and returns
// the number to hand out plus the token to store.
type LockingTokenStore interface {
	TokenStore
	UpdateToken(ctx context.Context, advance func(current string) (issued, next string)) (string, error)
}

// Sequence hands out bill numbers from the persisted token.
//
// When the store implements LockingTokenStore the advance happens inside the
// store's own exclusion and concurrent devices get distinct numbers. With a
// plain TokenStore, Issue falls back to separate load and save calls.
type Sequence struct {
	store TokenStore
	log   *zap.Logger
}

// NewSequence creates a bill-number issuer over the given store.
func NewSequence(store TokenStore, log *zap.Logger) *Sequence {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequence{store: store, log: log}
}

// Issue returns the bill number to print on the current bill and persists the
// advanced token for the next one.
func (s *Sequence) Issue(ctx context.Context) (string, error) {
	if locking, ok := s.store.(LockingTokenStore); ok {
		issued, err := locking.UpdateToken(ctx, s.advance)
		if err != nil {
			return "", fmt.Errorf("advance bill number: %w", err)
		}
		return issued, nil
	}

	current, err := s.store.LoadToken(ctx)
	if err != nil {
		return "", fmt.Errorf("load bill number: %w", err)
	}
	issued, next := s.advance(current)
	if err := s.store.SaveToken(ctx, next); err != nil {
		return "", fmt.Errorf("save bill number: %w", err)
	}
	return issued, nil
}

// advance normalizes the stored token and computes its successor.
func (s *Sequence) advance(current string) (issued, next string) {
	if current == "" {
		current = InitialToken
	}
	if !tokenPattern.MatchString(current) {
		// Recover silently from a corrupted token; the customer never sees this
		s.log.Warn("malformed bill number token, resetting", zap.String("token", current))
		current = InitialToken
	}
	return current, NextToken(current)
}

package tasks

import (
	"strings"

	"golang.org/x/exp/constraints"
)

// Token is a labelled, optionally-payload-carrying handle a TokenList
// tracks weakly. Go has no destructors or weak pointers for arbitrary
// values, so "weak reference" is modeled explicitly: a holder calls Drop
// when it is done with the token, and every TokenList query treats a
// dropped token as absent (DESIGN.md).
type Token[T any] struct {
	name    string
	data    T
	hasData bool
	alive   bool
}

// MakeToken constructs a live, payload-less token.
func MakeToken[T any](name string) *Token[T] {
	return &Token[T]{name: name, alive: true}
}

// MakeTokenWithData constructs a live token carrying data.
func MakeTokenWithData[T any](name string, data T) *Token[T] {
	return &Token[T]{name: name, data: data, hasData: true, alive: true}
}

// Drop marks the token dead. A TokenList holding it will stop counting it
// on its next sanitation pass. Idempotent.
func (t *Token[T]) Drop() {
	if t != nil {
		t.alive = false
	}
}

// IsAlive reports whether Drop has not yet been called.
func (t *Token[T]) IsAlive() bool { return t != nil && t.alive }

func (t *Token[T]) Name() string { return t.name }

func (t *Token[T]) Data() (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	return t.data, t.hasData
}

// TokenList is a weak-referenced multiset of tokens with aggregate
// queries, used to track decentralized state shared among tasks (section
// 4.7) — for instance, several tasks each holding a "blocking" token while
// some condition applies, with a watcher task polling HasTokens.
type TokenList[T any] struct {
	tokens []*Token[T]
}

// NewTokenList returns an empty list.
func NewTokenList[T any]() *TokenList[T] {
	return &TokenList[T]{}
}

// sanitize drops dead entries in place, preserving the relative order of
// survivors — GetLeastRecent/GetMostRecent depend on insertion order
// surviving a sanitation pass (unlike RemoveToken, which may reorder).
func (l *TokenList[T]) sanitize() {
	live := l.tokens[:0]
	for _, t := range l.tokens {
		if t.IsAlive() {
			live = append(live, t)
		}
	}
	l.tokens = live
}

// AddToken registers t, deduplicated by identity. Sanitizes first.
func (l *TokenList[T]) AddToken(t *Token[T]) {
	l.sanitize()
	for _, existing := range l.tokens {
		if existing == t {
			return
		}
	}
	l.tokens = append(l.tokens, t)
}

// TakeToken constructs a token and adds it in one step.
func (l *TokenList[T]) TakeToken(name string, data T) *Token[T] {
	t := MakeTokenWithData(name, data)
	l.AddToken(t)
	return t
}

// RemoveToken removes t by identity, swap-remove style. A no-op if t is
// not present.
func (l *TokenList[T]) RemoveToken(t *Token[T]) {
	for i, existing := range l.tokens {
		if existing == t {
			last := len(l.tokens) - 1
			l.tokens[i] = l.tokens[last]
			l.tokens = l.tokens[:last]
			return
		}
	}
}

// HasTokens reports whether at least one live token remains, sanitizing
// first.
func (l *TokenList[T]) HasTokens() bool {
	l.sanitize()
	return len(l.tokens) > 0
}

// GetTokenData returns the payloads of every live token that has data.
func (l *TokenList[T]) GetTokenData() []T {
	l.sanitize()
	out := make([]T, 0, len(l.tokens))
	for _, t := range l.tokens {
		if t.hasData {
			out = append(out, t.data)
		}
	}
	return out
}

// GetLeastRecent returns the oldest surviving token (the one added
// longest ago, ignoring anything since dropped). Order is list position:
// after a RemoveToken, whose swap-remove moves the last entry into the
// removed slot, it no longer strictly follows insertion order.
func (l *TokenList[T]) GetLeastRecent() (*Token[T], bool) {
	l.sanitize()
	if len(l.tokens) == 0 {
		return nil, false
	}
	return l.tokens[0], true
}

// GetMostRecent returns the most recently added live token, by list
// position (see GetLeastRecent for how RemoveToken affects it).
func (l *TokenList[T]) GetMostRecent() (*Token[T], bool) {
	l.sanitize()
	if len(l.tokens) == 0 {
		return nil, false
	}
	return l.tokens[len(l.tokens)-1], true
}

// Contains reports whether any live token carries data equal to v.
func (l *TokenList[T]) Contains(v T) bool {
	l.sanitize()
	for _, t := range l.tokens {
		if t.hasData && any(t.data) == any(v) {
			return true
		}
	}
	return false
}

// GetDebugString joins the names of every live token with newlines,
// or "[no tokens]" when none remain.
func (l *TokenList[T]) GetDebugString() string {
	l.sanitize()
	if len(l.tokens) == 0 {
		return "[no tokens]"
	}
	names := make([]string, len(l.tokens))
	for i, t := range l.tokens {
		names[i] = t.name
	}
	return strings.Join(names, "\n")
}

// OrderedTokenList is a TokenList over an orderable payload type, adding
// GetMin/GetMax.
type OrderedTokenList[T constraints.Ordered] struct {
	TokenList[T]
}

func NewOrderedTokenList[T constraints.Ordered]() *OrderedTokenList[T] {
	return &OrderedTokenList[T]{}
}

// GetMin returns the smallest live payload.
func (l *OrderedTokenList[T]) GetMin() (T, bool) {
	data := l.GetTokenData()
	var zero T
	if len(data) == 0 {
		return zero, false
	}
	min := data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// GetMax returns the largest live payload.
func (l *OrderedTokenList[T]) GetMax() (T, bool) {
	data := l.GetTokenData()
	var zero T
	if len(data) == 0 {
		return zero, false
	}
	max := data[0]
	for _, v := range data[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// NumericTokenList is a TokenList over a numeric payload type, adding
// GetMean on top of OrderedTokenList's GetMin/GetMax.
type NumericTokenList[T constraints.Integer | constraints.Float] struct {
	OrderedTokenList[T]
}

func NewNumericTokenList[T constraints.Integer | constraints.Float]() *NumericTokenList[T] {
	return &NumericTokenList[T]{}
}

// GetMean returns the arithmetic mean of every live payload.
func (l *NumericTokenList[T]) GetMean() (float64, bool) {
	data := l.GetTokenData()
	if len(data) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range data {
		sum += float64(v)
	}
	return sum / float64(len(data)), true
}

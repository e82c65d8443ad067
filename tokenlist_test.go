package tasks_test

import (
	"strings"
	"testing"

	"github.com/loopkit/tasks"
)

func TestHasTokensReflectsLiveHolders(t *testing.T) {
	list := tasks.NewTokenList[struct{}]()
	if list.HasTokens() {
		t.Fatalf("empty list should report no tokens")
	}

	tok := tasks.MakeToken[struct{}]("blocking")
	list.AddToken(tok)
	if !list.HasTokens() {
		t.Fatalf("expected a live token to be observed")
	}

	tok.Drop()
	if list.HasTokens() {
		t.Fatalf("dropped token should no longer count")
	}
}

func TestAddTokenDeduplicatesByIdentity(t *testing.T) {
	list := tasks.NewTokenList[int]()
	tok := tasks.MakeTokenWithData("n", 5)
	list.AddToken(tok)
	list.AddToken(tok)
	if got := list.GetTokenData(); len(got) != 1 {
		t.Fatalf("got %d entries, want 1 (deduplicated)", len(got))
	}
}

func TestRemoveTokenByIdentity(t *testing.T) {
	list := tasks.NewTokenList[int]()
	a := tasks.MakeTokenWithData("a", 1)
	b := tasks.MakeTokenWithData("b", 2)
	list.AddToken(a)
	list.AddToken(b)
	list.RemoveToken(a)
	data := list.GetTokenData()
	if len(data) != 1 || data[0] != 2 {
		t.Fatalf("got %v, want [2]", data)
	}
}

func TestOrderedTokenListMinMax(t *testing.T) {
	list := tasks.NewOrderedTokenList[int]()
	if _, ok := list.GetMin(); ok {
		t.Fatalf("empty list should have no min")
	}

	a := list.TakeToken("a", 3)
	list.TakeToken("b", 7)
	c := list.TakeToken("c", 1)

	min, ok := list.GetMin()
	if !ok || min != 1 {
		t.Fatalf("got (%v, %v), want (1, true)", min, ok)
	}
	max, ok := list.GetMax()
	if !ok || max != 7 {
		t.Fatalf("got (%v, %v), want (7, true)", max, ok)
	}

	a.Drop()
	c.Drop()
	min, ok = list.GetMin()
	if !ok || min != 7 {
		t.Fatalf("got (%v, %v), want (7, true) after dropping the others", min, ok)
	}
}

func TestNumericTokenListMean(t *testing.T) {
	list := tasks.NewNumericTokenList[int]()
	list.TakeToken("a", 2)
	list.TakeToken("b", 4)
	mean, ok := list.GetMean()
	if !ok || mean != 3 {
		t.Fatalf("got (%v, %v), want (3, true)", mean, ok)
	}
}

func TestLeastAndMostRecentTrackInsertionOrder(t *testing.T) {
	list := tasks.NewOrderedTokenList[int]()
	list.TakeToken("first", 3)
	list.TakeToken("second", 7)
	c := list.TakeToken("third", 5)

	least, _ := list.GetLeastRecent()
	most, _ := list.GetMostRecent()
	if v, _ := least.Data(); v != 3 {
		t.Fatalf("got least-recent data %v, want 3", v)
	}
	if v, _ := most.Data(); v != 5 {
		t.Fatalf("got most-recent data %v, want 5", v)
	}

	c.Drop()
	most, _ = list.GetMostRecent()
	if v, _ := most.Data(); v != 7 {
		t.Fatalf("got most-recent data %v after dropping third, want 7", v)
	}
}

func TestSanitizePreservesOrderWhenAnInteriorTokenDies(t *testing.T) {
	list := tasks.NewOrderedTokenList[int]()
	list.TakeToken("a", 1)
	b := list.TakeToken("b", 2)
	list.TakeToken("c", 3)
	list.TakeToken("d", 4)

	b.Drop()
	most, _ := list.GetMostRecent()
	if v, _ := most.Data(); v != 4 {
		t.Fatalf("got most-recent data %v, want 4 (d)", v)
	}
}

func TestGetDebugStringReportsNoTokensWhenEmpty(t *testing.T) {
	list := tasks.NewTokenList[struct{}]()
	if list.GetDebugString() != "[no tokens]" {
		t.Fatalf("got %q", list.GetDebugString())
	}
	tok := tasks.MakeToken[struct{}]("alpha")
	list.AddToken(tok)
	if !strings.Contains(list.GetDebugString(), "alpha") {
		t.Fatalf("expected debug string to mention the live token's name")
	}
}

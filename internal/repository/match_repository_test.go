package repository

import (
	"testing"

	"github.com/google/uuid"
)

func TestMatchRepositoryPairLookupIgnoresOrder(t *testing.T) {
	db := setupDB(t)
	buzzes := NewBuzzRepository(db)
	matches := NewMatchRepository(db)
	a, b := uuid.New(), uuid.New()

	if _, err := buzzes.PromoteToMatch(a, b); err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	forward, err := matches.GetByPair(a, b)
	if err != nil {
		t.Fatalf("GetByPair(a,b) failed: %v", err)
	}
	reverse, err := matches.GetByPair(b, a)
	if err != nil {
		t.Fatalf("GetByPair(b,a) failed: %v", err)
	}
	if forward.ID != reverse.ID {
		t.Errorf("lookups diverged: %s vs %s", forward.ID, reverse.ID)
	}

	exists, err := matches.ExistsForPair(b, a)
	if err != nil || !exists {
		t.Fatalf("expected pair to exist, got exists=%v err=%v", exists, err)
	}
}

func TestMatchRepositoryPeersOf(t *testing.T) {
	db := setupDB(t)
	buzzes := NewBuzzRepository(db)
	matches := NewMatchRepository(db)
	me, peer1, peer2, stranger := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	if _, err := buzzes.PromoteToMatch(me, peer1); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if _, err := buzzes.PromoteToMatch(peer2, me); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if _, err := buzzes.PromoteToMatch(peer1, stranger); err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	peers, err := matches.PeersOf(me)
	if err != nil {
		t.Fatalf("PeersOf failed: %v", err)
	}
	if len(peers) != 2 || !peers[peer1] || !peers[peer2] {
		t.Fatalf("unexpected peer set: %v", peers)
	}
	if peers[stranger] {
		t.Error("stranger appeared in peer set")
	}

	list, err := matches.ListForUser(me)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(list))
	}
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryStore_LoadCreatesZeroedLedger(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	l, err := s.Load(ctx, "0812345678")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.Identity != "0812345678" || l.Missions != 0 || l.Tokens != 0 {
		t.Fatalf("expected zeroed ledger, got %+v", l)
	}
}

func TestInMemoryStore_ApplyMission(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	l, err := s.ApplyMission(ctx, "0812345678", 12)
	if err != nil {
		t.Fatalf("apply mission: %v", err)
	}
	if l.Missions != 1 || l.Tokens != 12 {
		t.Fatalf("expected missions=1 tokens=12, got %+v", l)
	}

	// Second call increments proportionally, no double counting.
	l, err = s.ApplyMission(ctx, "0812345678", 15)
	if err != nil {
		t.Fatalf("apply mission: %v", err)
	}
	if l.Missions != 2 || l.Tokens != 27 {
		t.Fatalf("expected missions=2 tokens=27, got %+v", l)
	}
}

func TestInMemoryStore_ApplyRewardDoesNotTouchMissions(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	l, err := s.ApplyReward(ctx, "citizen_example_com", 5)
	if err != nil {
		t.Fatalf("apply reward: %v", err)
	}
	if l.Missions != 0 || l.Tokens != 5 {
		t.Fatalf("expected missions=0 tokens=5, got %+v", l)
	}
}

func TestInMemoryStore_Redeem(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	SeedLedger(s, UserLedger{Identity: "0812345678", Missions: 3, Tokens: 40})

	l, err := s.Redeem(ctx, "0812345678", 25)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if l.Tokens != 15 {
		t.Fatalf("expected 15 tokens after redeem, got %d", l.Tokens)
	}

	if _, err := s.Redeem(ctx, "0812345678", 100); !errors.Is(err, ErrInsufficientTokens) {
		t.Fatalf("expected insufficient tokens, got %v", err)
	}
}

func TestInMemoryStore_SaveOverwrites(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	l := UserLedger{Identity: "0812345678", Missions: 2, Tokens: 30, Email: "c@x.y"}
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := s.Load(ctx, "0812345678")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Missions != 2 || got.Tokens != 30 || got.Email != "c@x.y" {
		t.Fatalf("unexpected ledger %+v", got)
	}
}

func TestInMemoryStore_ConcurrentRewards(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.ApplyReward(ctx, "0812345678", 5); err != nil {
				t.Errorf("reward %s failed: %v", fmt.Sprintf("tx-%d", i), err)
			}
		}(i)
	}
	wg.Wait()

	l, _ := s.Load(ctx, "0812345678")
	if l.Tokens != workers*5 {
		t.Fatalf("expected %d tokens, got %d", workers*5, l.Tokens)
	}
}

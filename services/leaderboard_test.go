package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGetLeaderboardOrdering(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)

	// Monotonically growing base keeps these three above anything earlier
	// tests (or prior runs) put in the shared database.
	base := time.Now().Unix() * 1000
	users := []struct {
		id     string
		points int64
	}{
		{uuid.NewString(), base + 300},
		{uuid.NewString(), base + 200},
		{uuid.NewString(), base + 100},
	}
	for _, u := range users {
		if _, err := svc.progression.GetOrCreateProgress(u.id); err != nil {
			t.Fatalf("GetOrCreateProgress failed: %v", err)
		}
		if _, err := svc.progression.AwardPoints(u.id, u.points, "test:seed"); err != nil {
			t.Fatalf("AwardPoints failed: %v", err)
		}
	}

	entries, err := svc.leaderboard.GetLeaderboard("all_time", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(entries) < 3 {
		t.Fatalf("entries = %d, want at least 3", len(entries))
	}

	for i, u := range users {
		if entries[i].ExternalUserID != u.id {
			t.Fatalf("rank %d = %s, want %s", i+1, entries[i].ExternalUserID, u.id)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("rank field = %d, want %d", entries[i].Rank, i+1)
		}
		if entries[i].TotalPoints != u.points {
			t.Fatalf("rank %d points = %d, want %d", i+1, entries[i].TotalPoints, u.points)
		}
	}

	// Ranks stay contiguous through the whole page.
	for i, entry := range entries {
		if entry.Rank != i+1 {
			t.Fatalf("non-contiguous rank at index %d: %d", i, entry.Rank)
		}
	}

	// Descending points throughout.
	for i := 1; i < len(entries); i++ {
		if entries[i].TotalPoints > entries[i-1].TotalPoints {
			t.Fatalf("points not descending at index %d: %d > %d", i, entries[i].TotalPoints, entries[i-1].TotalPoints)
		}
	}
}

func TestGetLeaderboardTiedPoints(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)

	base := time.Now().Unix() * 1000
	tiedA := uuid.NewString()
	tiedB := uuid.NewString()
	trailing := uuid.NewString()
	seeds := []struct {
		id     string
		points int64
	}{
		{tiedA, base + 500},
		{tiedB, base + 500},
		{trailing, base + 400},
	}
	for _, u := range seeds {
		if _, err := svc.progression.GetOrCreateProgress(u.id); err != nil {
			t.Fatalf("GetOrCreateProgress failed: %v", err)
		}
		if _, err := svc.progression.AwardPoints(u.id, u.points, "test:tie"); err != nil {
			t.Fatalf("AwardPoints failed: %v", err)
		}
	}

	entries, err := svc.leaderboard.GetLeaderboard("all_time", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(entries) < 3 {
		t.Fatalf("entries = %d, want at least 3", len(entries))
	}

	// Both tied users appear, each with their own row-number rank; the tie is
	// broken by created_at so neither is dropped or merged.
	top2 := map[string]bool{entries[0].ExternalUserID: true, entries[1].ExternalUserID: true}
	if !top2[tiedA] || !top2[tiedB] {
		t.Fatalf("tied users not in top 2: got %v and %v", entries[0].ExternalUserID, entries[1].ExternalUserID)
	}
	if entries[0].TotalPoints != base+500 || entries[1].TotalPoints != base+500 {
		t.Fatalf("tied points = %d/%d, want both %d", entries[0].TotalPoints, entries[1].TotalPoints, base+500)
	}
	if entries[2].ExternalUserID != trailing {
		t.Fatalf("rank 3 = %s, want %s", entries[2].ExternalUserID, trailing)
	}
	for i := 0; i < 3; i++ {
		if entries[i].Rank != i+1 {
			t.Fatalf("rank at index %d = %d, want %d", i, entries[i].Rank, i+1)
		}
	}
}

func TestGetLeaderboardLimitClamp(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)

	for _, limit := range []int{0, -5, 5000} {
		entries, err := svc.leaderboard.GetLeaderboard("all_time", limit)
		if err != nil {
			t.Fatalf("GetLeaderboard(%d) failed: %v", limit, err)
		}
		if len(entries) > maxLeaderboardSize {
			t.Fatalf("GetLeaderboard(%d) returned %d entries, max is %d", limit, len(entries), maxLeaderboardSize)
		}
	}
}

func TestGetUserRankTopUser(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)

	userID := uuid.NewString()
	if _, err := svc.progression.GetOrCreateProgress(userID); err != nil {
		t.Fatalf("GetOrCreateProgress failed: %v", err)
	}
	// More points than any prior test user.
	points := time.Now().Unix()*1000 + 999
	if _, err := svc.progression.AwardPoints(userID, points, "test:rank"); err != nil {
		t.Fatalf("AwardPoints failed: %v", err)
	}

	rank, err := svc.leaderboard.GetUserRank(userID)
	if err != nil {
		t.Fatalf("GetUserRank failed: %v", err)
	}
	if rank != 1 {
		t.Fatalf("rank = %d, want 1", rank)
	}
}

func TestGetUserRankUnknownUser(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)

	_, err := svc.leaderboard.GetUserRank(uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

package user

import (
	"testing"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, uuid string, solvedCount int, updatedAt time.Time) {
	t.Helper()
	u := User{UUID: uuid, SolvedCount: solvedCount, SolvedCountUpdatedAt: updatedAt}
	if err := database.DB.Create(&u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
}

func TestCurrentRankOrdering(t *testing.T) {
	setupTestEnv(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// A和B同分，A先达到；C分数更低
	seedUser(t, "user-a", 5, base)
	seedUser(t, "user-b", 5, base.Add(time.Hour))
	seedUser(t, "user-c", 3, base)

	cases := []struct {
		uuid string
		want int64
	}{
		{"user-a", 1},
		{"user-b", 2},
		{"user-c", 3},
	}
	for _, tc := range cases {
		rank, err := CurrentRank(tc.uuid)
		if err != nil {
			t.Fatalf("CurrentRank(%s): %v", tc.uuid, err)
		}
		if rank != tc.want {
			t.Errorf("CurrentRank(%s) = %d, want %d", tc.uuid, rank, tc.want)
		}
	}
}

func TestApplySolveTxIncrements(t *testing.T) {
	setupTestEnv(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedUser(t, "user-a", 2, base)

	now := base.Add(24 * time.Hour)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return ApplySolveTx(tx, "user-a", now)
	})
	if err != nil {
		t.Fatalf("ApplySolveTx: %v", err)
	}

	u, err := GetByUUID("user-a")
	if err != nil {
		t.Fatalf("GetByUUID: %v", err)
	}
	if u.SolvedCount != 3 {
		t.Fatalf("SolvedCount应为3，得到 %d", u.SolvedCount)
	}
	if !u.SolvedCountUpdatedAt.Equal(now) {
		t.Fatalf("SolvedCountUpdatedAt应刷新为解题时刻")
	}
}

func TestRankRecomputedAfterSolve(t *testing.T) {
	setupTestEnv(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedUser(t, "leader", 2, base)
	seedUser(t, "chaser", 1, base)

	rank, err := CurrentRank("chaser")
	if err != nil {
		t.Fatalf("CurrentRank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("解题前chaser应排第2，得到 %d", rank)
	}

	// chaser追平：同分但达到时刻更晚，仍在leader之后
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return ApplySolveTx(tx, "chaser", base.Add(time.Hour))
	})
	if err != nil {
		t.Fatalf("ApplySolveTx: %v", err)
	}
	rank, err = CurrentRank("chaser")
	if err != nil {
		t.Fatalf("CurrentRank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("同分后到者应仍排第2，得到 %d", rank)
	}

	// 反超
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return ApplySolveTx(tx, "chaser", base.Add(2*time.Hour))
	})
	if err != nil {
		t.Fatalf("ApplySolveTx: %v", err)
	}
	rank, err = CurrentRank("chaser")
	if err != nil {
		t.Fatalf("CurrentRank: %v", err)
	}
	if rank != 1 {
		t.Fatalf("反超后chaser应排第1，得到 %d", rank)
	}
}

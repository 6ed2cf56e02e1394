package progress

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestEnv(t *testing.T) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	database.DB = db

	if err := db.AutoMigrate(&SolvedRecord{}, &ViewedRecord{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
}

func TestMarkViewedIdempotent(t *testing.T) {
	setupTestEnv(t)

	// 匿名身份不留任何记录
	if err := MarkViewed("", 1); err != nil {
		t.Fatalf("匿名MarkViewed应为空操作: %v", err)
	}

	if err := MarkViewed("user-a", 1); err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}
	if err := MarkViewed("user-a", 1); err != nil {
		t.Fatalf("重复MarkViewed应无害: %v", err)
	}

	var count int64
	if err := database.DB.Model(&ViewedRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("重复记录不应落库两次，得到 %d 条", count)
	}

	viewed, err := ViewedSet("user-a")
	if err != nil {
		t.Fatalf("ViewedSet: %v", err)
	}
	if !viewed[1] || len(viewed) != 1 {
		t.Fatalf("viewed缓存不正确: %v", viewed)
	}
}

func TestMarkSolvedTxReportsNewness(t *testing.T) {
	setupTestEnv(t)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		isNew, err := MarkSolvedTx(tx, "user-a", 7)
		if err != nil {
			return err
		}
		if !isNew {
			t.Fatalf("首次解题应报告isNew=true")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		isNew, err := MarkSolvedTx(tx, "user-a", 7)
		if err != nil {
			return err
		}
		if isNew {
			t.Fatalf("重复解题应报告isNew=false")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	solved, err := HasSolved("user-a", 7)
	if err != nil || !solved {
		t.Fatalf("HasSolved: solved=%v err=%v", solved, err)
	}
	solved, err = HasSolved("user-b", 7)
	if err != nil || solved {
		t.Fatalf("其他用户不应被记为已解出: solved=%v err=%v", solved, err)
	}
}

func TestWarmupCacheRebuildsFromSQL(t *testing.T) {
	setupTestEnv(t)

	records := []SolvedRecord{
		{UserUUID: "user-a", ScreenshotID: 1},
		{UserUUID: "user-a", ScreenshotID: 2},
		{UserUUID: "user-b", ScreenshotID: 3},
	}
	if err := database.DB.Create(&records).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := database.DB.Create(&ViewedRecord{UserUUID: "user-a", ScreenshotID: 9}).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 先污染缓存，确认重建会清掉不在SQL里的脏数据
	if err := database.RDB.SAdd(database.Ctx, SolvedKey("user-a"), "999").Err(); err != nil {
		t.Fatalf("SAdd: %v", err)
	}

	if err := WarmupCache(); err != nil {
		t.Fatalf("WarmupCache: %v", err)
	}

	solvedA, err := SolvedSet("user-a")
	if err != nil {
		t.Fatalf("SolvedSet: %v", err)
	}
	if len(solvedA) != 2 || !solvedA[1] || !solvedA[2] {
		t.Fatalf("user-a的solved缓存重建不正确: %v", solvedA)
	}
	if solvedA[999] {
		t.Fatalf("重建后脏数据应被清除")
	}

	solvedB, err := SolvedSet("user-b")
	if err != nil {
		t.Fatalf("SolvedSet: %v", err)
	}
	if len(solvedB) != 1 || !solvedB[3] {
		t.Fatalf("user-b的solved缓存重建不正确: %v", solvedB)
	}

	viewedA, err := ViewedSet("user-a")
	if err != nil {
		t.Fatalf("ViewedSet: %v", err)
	}
	if len(viewedA) != 1 || !viewedA[9] {
		t.Fatalf("user-a的viewed缓存重建不正确: %v", viewedA)
	}
}

package screenshot

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/progress"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/token"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestEnv 用内存SQLite和miniredis替换全局的数据库句柄。
// 连接池收紧到1，保证":memory:"始终指向同一个数据库。
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

	if err := db.AutoMigrate(
		&Screenshot{},
		&user.User{},
		&progress.SolvedRecord{},
		&progress.ViewedRecord{},
	); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	token.InitializeSecretKey("unit-test-secret")
}

func seedScreenshot(t *testing.T, name string, status ApprovalStatus) *Screenshot {
	t.Helper()
	s := &Screenshot{
		ImageURL:       "https://img.example.com/" + name,
		AddedBy:        "uploader-uuid",
		CanonicalName:  name,
		ApprovalStatus: status,
	}
	if err := database.DB.Create(s).Error; err != nil {
		t.Fatalf("创建截图失败: %v", err)
	}
	if status == StatusApproved {
		if err := AddApprovedToCache(s.ID); err != nil {
			t.Fatalf("AddApprovedToCache: %v", err)
		}
	}
	return s
}

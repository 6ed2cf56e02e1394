package rating

import (
	"math"
	"testing"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/screenshot"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

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

	if err := db.AutoMigrate(&screenshot.Screenshot{}, &RatingRecord{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
}

func seedApproved(t *testing.T, name string) *screenshot.Screenshot {
	t.Helper()
	s := &screenshot.Screenshot{
		ImageURL:       "https://img.example.com/" + name,
		AddedBy:        "uploader-uuid",
		CanonicalName:  name,
		ApprovalStatus: screenshot.StatusApproved,
	}
	if err := database.DB.Create(s).Error; err != nil {
		t.Fatalf("创建截图失败: %v", err)
	}
	return s
}

func TestRateRequiresDurableIdentity(t *testing.T) {
	setupTestDB(t)
	s := seedApproved(t, "Celeste")

	_, err := Rate(user.Identity{}, s.ID, 7)
	if !apperror.Is(err, apperror.CodeUnauthenticated) {
		t.Fatalf("匿名身份评分应返回UNAUTHENTICATED，得到: %v", err)
	}
}

func TestRateInvisibleScreenshotIsNotFound(t *testing.T) {
	setupTestDB(t)

	pending := &screenshot.Screenshot{CanonicalName: "Hades", ApprovalStatus: screenshot.StatusPending}
	if err := database.DB.Create(pending).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}
	identity := user.Identity{UUID: "rater-uuid"}

	if _, err := Rate(identity, pending.ID, 5); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("未审核截图应返回NOT_FOUND，得到: %v", err)
	}
	if _, err := Rate(identity, 9999, 5); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("不存在的截图应返回NOT_FOUND，得到: %v", err)
	}
}

func TestRateFirstThenUpdate(t *testing.T) {
	setupTestDB(t)
	s := seedApproved(t, "Celeste")
	identity := user.Identity{UUID: "rater-uuid"}

	stats, err := Rate(identity, s.ID, 4)
	if err != nil {
		t.Fatalf("首次Rate: %v", err)
	}
	if stats.RatingSum != 4 || stats.RatingCount != 1 || stats.OwnRating != 4 {
		t.Fatalf("首次评分聚合错误: %+v", stats)
	}

	// 第二次评分替换而不是追加：计数不变、总和按差值调整
	stats, err = Rate(identity, s.ID, 7)
	if err != nil {
		t.Fatalf("更新Rate: %v", err)
	}
	if stats.RatingSum != 7 || stats.RatingCount != 1 || stats.OwnRating != 7 {
		t.Fatalf("更新评分聚合错误: %+v", stats)
	}
	if math.Abs(stats.AverageRating-7) > 1e-9 {
		t.Fatalf("平均分应为7，得到 %f", stats.AverageRating)
	}

	// 持久化聚合与返回值一致
	var reloaded screenshot.Screenshot
	if err := database.DB.First(&reloaded, s.ID).Error; err != nil {
		t.Fatalf("First: %v", err)
	}
	if reloaded.RatingSum != 7 || reloaded.RatingCount != 1 {
		t.Fatalf("持久化聚合错误: sum=%d count=%d", reloaded.RatingSum, reloaded.RatingCount)
	}
}

func TestRateClampsValue(t *testing.T) {
	setupTestDB(t)
	s := seedApproved(t, "Celeste")

	stats, err := Rate(user.Identity{UUID: "rater-a"}, s.ID, -5)
	if err != nil {
		t.Fatalf("Rate(-5): %v", err)
	}
	if stats.OwnRating != 0 || stats.RatingSum != 0 || stats.RatingCount != 1 {
		t.Fatalf("越界低分应钳制为0: %+v", stats)
	}

	stats, err = Rate(user.Identity{UUID: "rater-b"}, s.ID, 15)
	if err != nil {
		t.Fatalf("Rate(15): %v", err)
	}
	if stats.OwnRating != 10 || stats.RatingSum != 10 || stats.RatingCount != 2 {
		t.Fatalf("越界高分应钳制为10: %+v", stats)
	}
	if math.Abs(stats.AverageRating-5) > 1e-9 {
		t.Fatalf("平均分应为5，得到 %f", stats.AverageRating)
	}
}

package screenshot

import (
	"testing"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/progress"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
)

func TestPickUnsolvedOnlyReturnsApproved(t *testing.T) {
	setupTestEnv(t)

	approved := seedScreenshot(t, "Celeste", StatusApproved)
	seedScreenshot(t, "Hades", StatusPending)
	seedScreenshot(t, "Undertale", StatusRejected)

	// 随机选取，多跑几次确保非APPROVED截图从未出现
	for i := 0; i < 20; i++ {
		sel, err := PickUnsolved(user.Identity{}, nil)
		if err != nil {
			t.Fatalf("PickUnsolved: %v", err)
		}
		if sel.ScreenshotID != approved.ID {
			t.Fatalf("选中了非APPROVED截图: %d", sel.ScreenshotID)
		}
		if !sel.IsUnseen {
			t.Fatalf("匿名身份没有viewed记录，结果应来自未看过档")
		}
		if sel.NeedToResetExclusion {
			t.Fatalf("没有排除集时不应出现重置信号")
		}
	}
}

func TestPickUnsolvedPrefersUnseen(t *testing.T) {
	setupTestEnv(t)

	viewed := seedScreenshot(t, "Celeste", StatusApproved)
	unseen := seedScreenshot(t, "Hades", StatusApproved)

	identity := user.Identity{UUID: "viewer-uuid"}
	if err := database.RDB.SAdd(database.Ctx, progress.ViewedKey(identity.UUID), viewed.ID).Err(); err != nil {
		t.Fatalf("SAdd: %v", err)
	}

	for i := 0; i < 20; i++ {
		sel, err := PickUnsolved(identity, nil)
		if err != nil {
			t.Fatalf("PickUnsolved: %v", err)
		}
		if sel.ScreenshotID != unseen.ID {
			t.Fatalf("未看过的截图还有剩余时应优先选取，却选中了 %d", sel.ScreenshotID)
		}
		if !sel.IsUnseen {
			t.Fatalf("IsUnseen应为true")
		}
	}
}

func TestPickUnsolvedExcludesSolved(t *testing.T) {
	setupTestEnv(t)

	solved := seedScreenshot(t, "Celeste", StatusApproved)
	remaining := seedScreenshot(t, "Hades", StatusApproved)

	identity := user.Identity{UUID: "solver-uuid"}
	if err := progress.MirrorSolved(identity.UUID, solved.ID); err != nil {
		t.Fatalf("MirrorSolved: %v", err)
	}

	for i := 0; i < 20; i++ {
		sel, err := PickUnsolved(identity, nil)
		if err != nil {
			t.Fatalf("PickUnsolved: %v", err)
		}
		if sel.ScreenshotID != remaining.ID {
			t.Fatalf("已解出的截图不应再被选中，却选中了 %d", sel.ScreenshotID)
		}
	}
}

func TestPickUnsolvedExhaustedExclusionResets(t *testing.T) {
	setupTestEnv(t)

	s1 := seedScreenshot(t, "Celeste", StatusApproved)
	s2 := seedScreenshot(t, "Hades", StatusApproved)

	// 排除集盖住了所有候选：应忽略排除集并要求调用者重置
	sel, err := PickUnsolved(user.Identity{}, []uint{s1.ID, s2.ID})
	if err != nil {
		t.Fatalf("PickUnsolved: %v", err)
	}
	if !sel.NeedToResetExclusion {
		t.Fatalf("排除集耗尽时应携带重置信号")
	}
	if sel.ScreenshotID != s1.ID && sel.ScreenshotID != s2.ID {
		t.Fatalf("意外的选取结果: %d", sel.ScreenshotID)
	}
}

func TestPickUnsolvedAllSolvedIsNotFound(t *testing.T) {
	setupTestEnv(t)

	s1 := seedScreenshot(t, "Celeste", StatusApproved)
	s2 := seedScreenshot(t, "Hades", StatusApproved)

	identity := user.Identity{UUID: "done-uuid"}
	for _, id := range []uint{s1.ID, s2.ID} {
		if err := progress.MirrorSolved(identity.UUID, id); err != nil {
			t.Fatalf("MirrorSolved: %v", err)
		}
	}

	_, err := PickUnsolved(identity, nil)
	if !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("全部解出后应返回NOT_FOUND，得到: %v", err)
	}

	// 排除集非空也不能让已解出的截图复活
	_, err = PickUnsolved(identity, []uint{s1.ID})
	if !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("重置排除集不应绕过已解出过滤，得到: %v", err)
	}
}

package screenshot

import (
	"math/rand"

	"github.com/guessthegame/guess-the-game-backend/internal/progress"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
)

// SelectionDTO 是选题引擎的结果。
type SelectionDTO struct {
	ScreenshotID uint
	// IsUnseen 表示结果来自"从未看过"档
	IsUnseen bool
	// NeedToResetExclusion 表示排除集作为过滤器已被耗尽，
	// 调用者应清空它的排除缓存
	NeedToResetExclusion bool
}

// PickUnsolved 为一个身份选出下一张待猜截图，按严格的档位顺序取第一个非空结果：
//  1. 已审核、未解出、不在排除集、从未看过
//  2. 已审核、未解出、不在排除集（允许看过）
//  3. 排除集非空时：忽略排除集重跑档1-2，并携带重置信号
//  4. 全部为空：NOT_FOUND，该身份已耗尽所有已审核截图
//
// 档内平局用均匀随机打破，避免固定遍历顺序饿死尾部的截图。
func PickUnsolved(identity user.Identity, exclude []uint) (*SelectionDTO, error) {
	approved, err := ApprovedIDs()
	if err != nil {
		return nil, err
	}

	// 匿名身份没有任何已解出/已看过记录，两个集合都为空
	solved := map[uint]bool{}
	viewed := map[uint]bool{}
	if identity.IsDurable() {
		if solved, err = progress.SolvedSet(identity.UUID); err != nil {
			return nil, err
		}
		if viewed, err = progress.ViewedSet(identity.UUID); err != nil {
			return nil, err
		}
	}

	excludeSet := make(map[uint]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}
	noExclusion := map[uint]bool{}

	// 档1：未看过优先
	if id, ok := pickRandom(approved, solved, excludeSet, viewed); ok {
		return &SelectionDTO{ScreenshotID: id, IsUnseen: true}, nil
	}
	// 档2：允许看过
	if id, ok := pickRandom(approved, solved, excludeSet, nil); ok {
		return &SelectionDTO{ScreenshotID: id}, nil
	}
	// 档3：排除集非空时，忽略排除集重试，并告知调用者其排除缓存已失效
	if len(excludeSet) > 0 {
		if id, ok := pickRandom(approved, solved, noExclusion, viewed); ok {
			return &SelectionDTO{ScreenshotID: id, IsUnseen: true, NeedToResetExclusion: true}, nil
		}
		if id, ok := pickRandom(approved, solved, noExclusion, nil); ok {
			return &SelectionDTO{ScreenshotID: id, NeedToResetExclusion: true}, nil
		}
	}

	return nil, apperror.New(apperror.CodeNotFound, "没有可以呈现给该用户的截图")
}

// pickRandom 在候选全集中剔除三个过滤集后均匀随机取一个。
// viewedFilter为nil表示本档允许已看过的截图。
func pickRandom(approved []uint, solved, exclude, viewedFilter map[uint]bool) (uint, bool) {
	candidates := make([]uint, 0, len(approved))
	for _, id := range approved {
		if solved[id] || exclude[id] {
			continue
		}
		if viewedFilter != nil && viewedFilter[id] {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

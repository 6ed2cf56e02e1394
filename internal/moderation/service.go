package moderation

import (
	"errors"
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/screenshot"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"gorm.io/gorm"
)

// requireModerator 校验调用者持有审核能力。
func requireModerator(identity user.Identity) error {
	if !identity.IsDurable() {
		return apperror.New(apperror.CodeUnauthenticated, "需要登录才能审核截图")
	}
	if !identity.CanModerate {
		return apperror.New(apperror.CodeUnauthenticated, "该用户没有审核能力")
	}
	return nil
}

// transition 执行一次审核状态迁移。
// 只允许 PENDING -> APPROVED / PENDING -> REJECTED：
// 条件更新保证对同一张截图的并发审核只有一次生效。
func transition(identity user.Identity, screenshotID uint, to screenshot.ApprovalStatus) error {
	if err := requireModerator(identity); err != nil {
		return err
	}

	result := database.DB.Model(&screenshot.Screenshot{}).
		Where("id = ? AND approval_status = ?", screenshotID, screenshot.StatusPending).
		Update("approval_status", to)
	if result.Error != nil {
		return fmt.Errorf("无法更新截图 %d 的审核状态: %w", screenshotID, result.Error)
	}
	if result.RowsAffected == 0 {
		// 不存在，或已不在PENDING状态
		var s screenshot.Screenshot
		err := database.DB.First(&s, screenshotID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", screenshotID)
		}
		if err != nil {
			return fmt.Errorf("无法读取截图 %d: %w", screenshotID, err)
		}
		return apperror.Newf(apperror.CodeValidation, "截图 %d 已处于 %s 状态，不能再次审核", screenshotID, s.ApprovalStatus)
	}
	return nil
}

// Approve 将一张PENDING截图标记为APPROVED，并加入选题候选集。
func Approve(identity user.Identity, screenshotID uint) error {
	if err := transition(identity, screenshotID, screenshot.StatusApproved); err != nil {
		return err
	}
	if err := screenshot.AddApprovedToCache(screenshotID); err != nil {
		fmt.Printf("警告: 无法将截图 %d 加入已审核缓存: %v\n", screenshotID, err)
	}
	return nil
}

// Reject 将一张PENDING截图标记为REJECTED。
func Reject(identity user.Identity, screenshotID uint) error {
	return transition(identity, screenshotID, screenshot.StatusRejected)
}

// PendingDTO 是待审核列表的条目。
type PendingDTO struct {
	ID            uint   `json:"id"`
	ImageURL      string `json:"imageUrl"`
	CanonicalName string `json:"name"`
	AddedBy       string `json:"addedBy"`
}

// ListPending 返回所有等待审核的截图。
// 审核员可以看到尚未公开的答案，这是能力标志赋予的例外。
func ListPending(identity user.Identity) ([]PendingDTO, error) {
	if err := requireModerator(identity); err != nil {
		return nil, err
	}

	var pending []screenshot.Screenshot
	err := database.DB.
		Where("approval_status = ?", screenshot.StatusPending).
		Order("id asc").Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取待审核截图: %w", err)
	}

	list := make([]PendingDTO, 0, len(pending))
	for _, s := range pending {
		list = append(list, PendingDTO{
			ID:            s.ID,
			ImageURL:      s.ImageURL,
			CanonicalName: s.CanonicalName,
			AddedBy:       s.AddedBy,
		})
	}
	return list, nil
}

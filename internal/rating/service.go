package rating

import (
	"errors"
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/screenshot"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsDTO 是一次评分后返回的最新聚合。
type StatsDTO struct {
	RatingSum     int     `json:"ratingSum"`
	RatingCount   int     `json:"ratingCount"`
	AverageRating float64 `json:"averageRating"`
	OwnRating     int     `json:"ownRating"`
}

// clampValue 把评分钳制进[0,10]。越界输入被纠正，而不是拒绝。
func clampValue(value int) int {
	if value < 0 {
		return 0
	}
	if value > 10 {
		return 10
	}
	return value
}

// replaceRating 用新值替换一条既有评分记录，并按差值调整聚合（计数不变）。
// 常规的二次评分和并发插入抢先后的补偿路径都走这里。
func replaceRating(tx *gorm.DB, s *screenshot.Screenshot, existing *RatingRecord, value int) (StatsDTO, error) {
	delta := value - existing.Value
	if err := tx.Model(existing).Update("value", value).Error; err != nil {
		return StatsDTO{}, fmt.Errorf("无法更新评分记录: %w", err)
	}
	if err := tx.Model(&screenshot.Screenshot{}).
		Where("id = ?", s.ID).
		UpdateColumn("rating_sum", gorm.Expr("rating_sum + ?", delta)).Error; err != nil {
		return StatsDTO{}, fmt.Errorf("无法调整评分聚合: %w", err)
	}
	return StatsDTO{
		RatingSum:   s.RatingSum + delta,
		RatingCount: s.RatingCount,
	}, nil
}

// Rate 记录或更新一个用户对一张截图的评分，并增量维护聚合。
//
// upsert语义：已有记录时聚合按 ratingSum += new - old 调整、计数不变；
// 否则创建记录、ratingSum += new、ratingCount += 1。
// 聚合永远增量更新，绝不重扫全部评分。
func Rate(identity user.Identity, screenshotID uint, value int) (*StatsDTO, error) {
	if !identity.IsDurable() {
		return nil, apperror.New(apperror.CodeUnauthenticated, "需要登录才能评分")
	}
	value = clampValue(value)

	var stats StatsDTO
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var s screenshot.Screenshot
		if err := tx.First(&s, screenshotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", screenshotID)
			}
			return fmt.Errorf("无法读取截图 %d: %w", screenshotID, err)
		}
		if s.ApprovalStatus != screenshot.StatusApproved {
			return apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", screenshotID)
		}

		var existing RatingRecord
		err := tx.Where("user_uuid = ? AND screenshot_id = ?", identity.UUID, screenshotID).
			Take(&existing).Error

		switch {
		case err == nil:
			// 第二次评分：替换并按差值调整聚合
			stats, err = replaceRating(tx, &s, &existing, value)
			return err

		case errors.Is(err, gorm.ErrRecordNotFound):
			// 首次评分：唯一约束负责裁决并发的重复插入
			record := RatingRecord{UserUUID: identity.UUID, ScreenshotID: screenshotID, Value: value}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
			if result.Error != nil {
				return fmt.Errorf("无法创建评分记录: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				// 并发插入抢先：按更新路径重走一遍差值调整
				if err := tx.Where("user_uuid = ? AND screenshot_id = ?", identity.UUID, screenshotID).
					Take(&existing).Error; err != nil {
					return fmt.Errorf("无法读取并发插入的评分记录: %w", err)
				}
				stats, err = replaceRating(tx, &s, &existing, value)
				return err
			}

			if err := tx.Model(&screenshot.Screenshot{}).
				Where("id = ?", screenshotID).
				UpdateColumns(map[string]interface{}{
					"rating_sum":   gorm.Expr("rating_sum + ?", value),
					"rating_count": gorm.Expr("rating_count + ?", 1),
				}).Error; err != nil {
				return fmt.Errorf("无法调整评分聚合: %w", err)
			}
			stats = StatsDTO{
				RatingSum:   s.RatingSum + value,
				RatingCount: s.RatingCount + 1,
			}
			return nil

		default:
			return fmt.Errorf("无法查询评分记录: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	stats.OwnRating = value
	if stats.RatingCount > 0 {
		stats.AverageRating = float64(stats.RatingSum) / float64(stats.RatingCount)
	}
	return &stats, nil
}

package progress

import (
	"fmt"
	"strconv"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkViewed 记录一张截图已展示给一个用户。
// 匿名身份（无UUID）不做任何记录；重复记录是无害的。
func MarkViewed(userUUID string, screenshotID uint) error {
	if userUUID == "" {
		return nil
	}

	record := ViewedRecord{UserUUID: userUUID, ScreenshotID: screenshotID}
	// 唯一约束冲突时什么都不做，让客户端重试天然幂等
	err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("无法写入viewed记录: %w", err)
	}

	if err := database.RDB.SAdd(database.Ctx, ViewedKey(userUUID), formatID(screenshotID)).Err(); err != nil {
		return fmt.Errorf("无法更新viewed缓存: %w", err)
	}
	return nil
}

// MarkSolvedTx 在给定事务中记录一次解题，返回这条记录是否是新建的。
// 返回false表示该用户此前已解出这张截图（幂等重解）。
func MarkSolvedTx(tx *gorm.DB, userUUID string, screenshotID uint) (bool, error) {
	record := SolvedRecord{UserUUID: userUUID, ScreenshotID: screenshotID}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("无法写入solved记录: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MirrorSolved 在解题事务提交后，将截图ID写入用户的已解出缓存。
// 缓存写入失败只影响选题命中率，不影响正确性，由调用方决定如何告警。
func MirrorSolved(userUUID string, screenshotID uint) error {
	return database.RDB.SAdd(database.Ctx, SolvedKey(userUUID), formatID(screenshotID)).Err()
}

// HasSolved 以SQL记录为权威，判断一个用户是否已解出某张截图。
func HasSolved(userUUID string, screenshotID uint) (bool, error) {
	if userUUID == "" {
		return false, nil
	}
	var count int64
	err := database.DB.Model(&SolvedRecord{}).
		Where("user_uuid = ? AND screenshot_id = ?", userUUID, screenshotID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("无法查询solved记录: %w", err)
	}
	return count > 0, nil
}

// SolvedSet 从缓存读取一个用户已解出的截图ID集合。
func SolvedSet(userUUID string) (map[uint]bool, error) {
	return readIDSet(SolvedKey(userUUID))
}

// ViewedSet 从缓存读取一个用户已看过的截图ID集合。
func ViewedSet(userUUID string) (map[uint]bool, error) {
	return readIDSet(ViewedKey(userUUID))
}

func readIDSet(key string) (map[uint]bool, error) {
	members, err := database.RDB.SMembers(database.Ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("无法读取集合 %s: %w", key, err)
	}
	ids := make(map[uint]bool, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids[uint(id)] = true
	}
	return ids, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

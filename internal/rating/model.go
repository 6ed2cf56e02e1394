package rating

import (
	"gorm.io/gorm"
)

// RatingRecord 记录一个用户对一张截图的评分。
// (UserUUID, ScreenshotID) 对上有唯一约束：同一用户的第二次评分
// 替换第一次并增量调整聚合，绝不产生第二张选票。
type RatingRecord struct {
	gorm.Model
	UserUUID     string `gorm:"uniqueIndex:idx_rating_pair;index"`
	ScreenshotID uint   `gorm:"uniqueIndex:idx_rating_pair"`

	// Value 的合法范围是[0,10]，越界输入在进入存储前被钳制
	Value int
}

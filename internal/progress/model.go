package progress

import (
	"gorm.io/gorm"
)

// SolvedRecord 记录一个用户已解出某张截图。
// (UserUUID, ScreenshotID) 对上有唯一约束：这条记录的存在与否
// 是"该用户是否解出该截图"的唯一权威依据，重复写入是无害的no-op。
type SolvedRecord struct {
	gorm.Model
	UserUUID     string `gorm:"uniqueIndex:idx_solved_pair;index"`
	ScreenshotID uint   `gorm:"uniqueIndex:idx_solved_pair"`
}

// ViewedRecord 记录一张截图曾展示给某个用户。
// 只被选题引擎的"未看过"档使用；同样带唯一对约束，upsert语义。
type ViewedRecord struct {
	gorm.Model
	UserUUID     string `gorm:"uniqueIndex:idx_viewed_pair;index"`
	ScreenshotID uint   `gorm:"uniqueIndex:idx_viewed_pair"`
}

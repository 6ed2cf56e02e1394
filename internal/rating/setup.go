package rating

import (
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
)

// PrimeCachedDB 是rating模块的初始化总入口。
// 评分聚合存放在screenshot表里，本模块只需要迁移自己的记录表。
func PrimeCachedDB() error {
	if err := database.DB.AutoMigrate(&RatingRecord{}); err != nil {
		return fmt.Errorf("无法迁移rating表: %w", err)
	}
	fmt.Println("Rating数据库表迁移成功。")
	return nil
}

package screenshot

import (
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Screenshot{}); err != nil {
		return fmt.Errorf("无法迁移screenshot表: %w", err)
	}
	fmt.Println("Screenshot数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQL重建已审核截图ID的Redis集合
func WarmupCache() error {
	var approved []Screenshot
	err := database.DB.Select("id").
		Where("approval_status = ?", StatusApproved).
		Find(&approved).Error
	if err != nil {
		return fmt.Errorf("无法从数据库读取已审核截图: %w", err)
	}

	pipe := database.RDB.Pipeline()
	// 先清空旧的缓存，确保数据一致性
	pipe.Del(database.Ctx, ApprovedSetKey)
	if len(approved) > 0 {
		ids := make([]interface{}, len(approved))
		for i, s := range approved {
			ids[i] = formatID(s.ID)
		}
		pipe.SAdd(database.Ctx, ApprovedSetKey, ids...)
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热已审核截图集合失败: %w", err)
	}

	fmt.Printf("成功预热 %d 张已审核截图到Redis。\n", len(approved))
	return nil
}

// PrimeCachedDB 是screenshot模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

package progress

import (
	"context"
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&SolvedRecord{}, &ViewedRecord{}); err != nil {
		return fmt.Errorf("无法迁移progress表: %w", err)
	}
	fmt.Println("Progress数据库表迁移成功。")
	return nil
}

// deleteKeysByPrefix 通过SCAN安全地删除一批前缀键
func deleteKeysByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	var cursor uint64
	matchPattern := prefix + "*"
	const batchSize = 500 // 每次SCAN和DEL的数量

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, matchPattern, batchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// WarmupCache 从SQL重建所有用户的已解出/已看过集合。
// Redis中的镜像数据是完全可丢弃的，这里先清空再整体重建。
func WarmupCache() error {
	if err := deleteKeysByPrefix(database.Ctx, database.RDB, SolvedKeyPrefix); err != nil {
		return fmt.Errorf("清理旧的solved缓存失败: %w", err)
	}
	if err := deleteKeysByPrefix(database.Ctx, database.RDB, ViewedKeyPrefix); err != nil {
		return fmt.Errorf("清理旧的viewed缓存失败: %w", err)
	}

	var solved []SolvedRecord
	if err := database.DB.Select("user_uuid", "screenshot_id").Find(&solved).Error; err != nil {
		return fmt.Errorf("无法读取solved记录: %w", err)
	}
	var viewed []ViewedRecord
	if err := database.DB.Select("user_uuid", "screenshot_id").Find(&viewed).Error; err != nil {
		return fmt.Errorf("无法读取viewed记录: %w", err)
	}

	// 使用Pipeline批量写回，减少往返
	pipe := database.RDB.Pipeline()
	for _, r := range solved {
		pipe.SAdd(database.Ctx, SolvedKey(r.UserUUID), formatID(r.ScreenshotID))
	}
	for _, r := range viewed {
		pipe.SAdd(database.Ctx, ViewedKey(r.UserUUID), formatID(r.ScreenshotID))
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热progress缓存失败: %w", err)
	}

	fmt.Printf("成功预热 %d 条solved记录和 %d 条viewed记录到Redis。\n", len(solved), len(viewed))
	return nil
}

// PrimeCachedDB 是progress模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

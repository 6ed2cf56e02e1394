package user

import (
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"gorm.io/gorm"
)

// RankingDTO 携带一次解题前后的排名变化，返回给提案接口的调用者。
type RankingDTO struct {
	Before int64 `json:"before"`
	After  int64 `json:"after"`
}

// CurrentRank 按需计算一个用户的1-based排名。
// 排序规则：SolvedCount降序；同分时先达到该分数者（SolvedCountUpdatedAt更早）在前。
// 排名完全由持久化的聚合字段推导，进程内不维护任何排名缓存。
func CurrentRank(uuidStr string) (int64, error) {
	u, err := GetByUUID(uuidStr)
	if err != nil {
		return 0, err
	}

	var better int64
	err = database.DB.Model(&User{}).
		Where("solved_count > ? OR (solved_count = ? AND solved_count_updated_at < ?)",
			u.SolvedCount, u.SolvedCount, u.SolvedCountUpdatedAt).
		Count(&better).Error
	if err != nil {
		return 0, fmt.Errorf("无法计算用户排名: %w", err)
	}
	return better + 1, nil
}

// ApplySolveTx 在事务中将一次新的解题计入用户聚合。
// 自增使用SQL表达式执行，并发解不同截图时计数不会丢失或重复。
// SolvedCountUpdatedAt同时刷新为当前时刻，作为新分数的平局裁决时间戳。
func ApplySolveTx(tx *gorm.DB, uuidStr string, now time.Time) error {
	return tx.Model(&User{}).
		Where("uuid = ?", uuidStr).
		UpdateColumns(map[string]interface{}{
			"solved_count":            gorm.Expr("solved_count + ?", 1),
			"solved_count_updated_at": now,
		}).Error
}

package screenshot

import (
	"fmt"
	"strconv"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
)

// --- Redis 键名常量 ---

const (
	// ApprovedSetKey 是一个Set，存储所有APPROVED状态截图的ID。
	// 它是选题引擎的候选全集，可随时从SQL完整重建。
	ApprovedSetKey = "screenshot:approved"
)

// AddApprovedToCache 将一张截图加入已审核集合。
func AddApprovedToCache(id uint) error {
	return database.RDB.SAdd(database.Ctx, ApprovedSetKey, formatID(id)).Err()
}

// RemoveApprovedFromCache 将一张截图移出已审核集合。
func RemoveApprovedFromCache(id uint) error {
	return database.RDB.SRem(database.Ctx, ApprovedSetKey, formatID(id)).Err()
}

// ApprovedIDs 返回已审核集合中的全部截图ID。
func ApprovedIDs() ([]uint, error) {
	members, err := database.RDB.SMembers(database.Ctx, ApprovedSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("无法读取已审核截图集合: %w", err)
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package screenshot

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

const (
	// guessRateKeyPrefix 是Redis中有序集合的键名前缀
	guessRateKeyPrefix = "guess_rate:"
	// guessRateWindow 定义了单IP猜测计数的滑动时间窗口
	guessRateWindow = time.Minute
	// guessRateTTL 是每个IP记录在Redis中的生存时间，比窗口稍长以作缓冲
	guessRateTTL = 2 * time.Minute
	// MaxGuessesPerWindow 是窗口内允许的最大猜测次数
	MaxGuessesPerWindow = 30
)

// generateUniqueID 根据给定的时间生成一个16字节的、抗冲突的成员ID。
// 结构: [ 8字节纳秒时间戳 (Big Endian) | 8字节随机数 ]
func generateUniqueID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IncrementGuessCount 在Redis中为一个IP原子地记录一次新的猜测，
// 并返回其在滑动窗口内的总猜测次数。
// 猜测记录不持久化到SQL，Redis重启后窗口自然清零，可以接受。
func IncrementGuessCount(ip string, guessTime time.Time) (int64, error) {
	if ip == "" {
		return 0, errors.New("猜测缺少IP")
	}
	if net.ParseIP(ip) == nil {
		return 0, errors.New("猜测IP无效")
	}

	key := guessRateKeyPrefix + ip
	minTimestamp := float64(guessTime.Add(-guessRateWindow).UnixMicro())

	memberID, err := generateUniqueID(guessTime)
	if err != nil {
		return 0, fmt.Errorf("生成memberID失败: %w", err)
	}

	// 使用Redis事务(TxPipeline)来保证清理+写入+计数的原子性
	pipe := database.RDB.TxPipeline()
	// a. 移除窗口外的旧记录
	pipe.ZRemRangeByScore(database.Ctx, key, "-inf", fmt.Sprintf("(%f", minTimestamp))
	// b. 添加新记录
	pipe.ZAdd(database.Ctx, key, redis.Z{Score: float64(guessTime.UnixMicro()), Member: memberID})
	// c. 刷新过期时间
	pipe.Expire(database.Ctx, key, guessRateTTL)
	// d. 获取更新后的总数
	countCmd := pipe.ZCard(database.Ctx, key)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return 0, fmt.Errorf("无法更新IP猜测计数: %w", err)
	}
	return countCmd.Val(), nil
}

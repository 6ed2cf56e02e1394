package health

import (
	"context"
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/pkg/lifecycle"
)

// checkInterval 是后台健康检查的周期
const checkInterval = 5 * time.Second

// pingTimeout 是单次Ping的超时时间
const pingTimeout = 2 * time.Second

// RecoveryFunc 是Redis从不健康状态恢复时的回调，由StartRedisHealthCheck注入。
// 典型实现是startup.RebuildCache，用于重建所有Redis镜像数据。
type RecoveryFunc func() error

// PerformCheck 执行一次阻塞式健康检查，并更新全局状态。
// 返回本次检查Redis是否可用。
func PerformCheck() bool {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	err := database.RDB.Ping(ctx).Err()
	database.UpdateRedisStatus(err == nil)
	return err == nil
}

// StartRedisHealthCheck 启动后台的持续健康检查循环。
// 当Redis从不健康恢复为健康时，会调用onRecovery重建缓存。
func StartRedisHealthCheck(handle *lifecycle.Handle, onRecovery RecoveryFunc) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	wasHealthy := database.IsRedisHealthy()
	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("Redis健康检查器已停止。")
			return
		}

		isHealthy := PerformCheck()
		if isHealthy && !wasHealthy && onRecovery != nil {
			fmt.Println("检测到Redis已恢复，正在重建缓存...")
			if err := onRecovery(); err != nil {
				fmt.Printf("警告: Redis恢复后的缓存重建失败: %v\n", err)
				// 重建失败则视为仍不健康，下一轮重试
				database.UpdateRedisStatus(false)
				isHealthy = false
			} else {
				fmt.Println("缓存重建完成。")
			}
		}
		wasHealthy = isHealthy
	}
}

package moderation

import (
	"github.com/guessthegame/guess-the-game-backend/internal/screenshot"
)

// PrimeModule 是moderation模块的初始化总入口。
// 把通知队列挂到screenshot模块的创建钩子上。
func PrimeModule() error {
	screenshot.RegisterModerationNotifier(EnqueueNewScreenshotNotification)
	return nil
}

package startup

import (
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/moderation"
	"github.com/guessthegame/guess-the-game-backend/internal/progress"
	"github.com/guessthegame/guess-the-game-backend/internal/rating"
	"github.com/guessthegame/guess-the-game-backend/internal/screenshot"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := screenshot.PrimeCachedDB(); err != nil {
		return err
	}
	if err := progress.PrimeCachedDB(); err != nil {
		return err
	}
	if err := rating.PrimeCachedDB(); err != nil {
		return err
	}
	if err := moderation.PrimeModule(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建所有Redis镜像数据。
// 用于Redis从故障中恢复之后；所有集合都从SQL完整重建。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := user.WarmupCache(); err != nil {
		return err
	}
	if err := screenshot.WarmupCache(); err != nil {
		return err
	}
	if err := progress.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}

package moderation

import (
	"fmt"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/mailer"
	"github.com/guessthegame/guess-the-game-backend/pkg/lifecycle"
)

// newScreenshotEvent 描述一条待通知审核员的新截图事件
type newScreenshotEvent struct {
	ScreenshotID uint
	Name         string
}

// notifyChan 是通知队列。队列满时直接丢弃事件：
// 通知是fire-and-forget，绝不反压到创建截图的请求路径上。
var notifyChan = make(chan newScreenshotEvent, 256)

// EnqueueNewScreenshotNotification 把一条新截图事件放入通知队列。
// 由screenshot模块通过钩子调用。
func EnqueueNewScreenshotNotification(screenshotID uint, name string) {
	select {
	case notifyChan <- newScreenshotEvent{ScreenshotID: screenshotID, Name: name}:
	default:
		fmt.Printf("警告: 审核通知队列已满，丢弃截图 %d 的通知\n", screenshotID)
	}
}

// StartNotifier 启动后台通知投递循环。
// 投递失败只记录日志；通知永远不会使触发它的主操作失败。
func StartNotifier(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("审核通知器 (Moderation Notifier) 已启动。")

	for {
		select {
		case <-handle.Done():
			fmt.Println("审核通知器: 收到停机信号，退出。")
			return
		case event := <-notifyChan:
			deliver(event)
		}
	}
}

func deliver(event newScreenshotEvent) {
	recipients := mailer.ModeratorRecipients()
	if len(recipients) == 0 {
		return
	}
	for _, to := range recipients {
		err := mailer.Send(mailer.Message{
			To:      to,
			Subject: "新截图等待审核",
			Text:    fmt.Sprintf("截图 #%d (%s) 已提交，等待审核。", event.ScreenshotID, event.Name),
		})
		if err != nil {
			fmt.Printf("警告: 无法向 %s 投递审核通知: %v\n", to, err)
		}
	}
}

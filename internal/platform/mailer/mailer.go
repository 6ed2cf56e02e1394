package mailer

import (
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/config"
	"github.com/valyala/fasthttp"
)

// sendTimeout 是单次邮件API调用的超时时间
const sendTimeout = 10 * time.Second

// Mailer 封装了Mailgun风格的HTTP邮件投递API。
type Mailer struct {
	cfg    config.MailerConfig
	client *fasthttp.Client
}

// globalMailer 是模块级的单例实例
var globalMailer *Mailer

// Initialize 创建全局的邮件客户端。
func Initialize(cfg config.MailerConfig) {
	globalMailer = &Mailer{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  sendTimeout,
			WriteTimeout: sendTimeout,
		},
	}
	if !cfg.Enabled {
		fmt.Println("警告: 邮件投递已禁用，所有外发邮件将只打印日志。")
	}
}

// Message 描述一封待投递的邮件。
type Message struct {
	To      string
	Subject string
	Text    string
}

// Send 通过HTTP API投递一封邮件。
// 投递失败返回error；调用方决定是否将其视为致命（审核通知是fire-and-forget）。
func Send(msg Message) error {
	if globalMailer == nil || !globalMailer.cfg.Enabled {
		fmt.Printf("邮件(未投递): to=%s subject=%q\n", msg.To, msg.Subject)
		return nil
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := fmt.Sprintf("%s/v3/%s/messages", globalMailer.cfg.BaseURL, globalMailer.cfg.Domain)
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.URI().SetUsername("api")
	req.URI().SetPassword(globalMailer.cfg.APIKey)
	req.PostArgs().Set("from", globalMailer.cfg.From)
	req.PostArgs().Set("to", msg.To)
	req.PostArgs().Set("subject", msg.Subject)
	req.PostArgs().Set("text", msg.Text)

	if err := globalMailer.client.DoTimeout(req, resp, sendTimeout); err != nil {
		return fmt.Errorf("无法请求邮件投递接口: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("邮件投递接口返回异常状态码: %d", resp.StatusCode())
	}
	return nil
}

// ModeratorRecipients 返回配置中的审核员收件人列表。
func ModeratorRecipients() []string {
	if globalMailer == nil {
		return nil
	}
	return globalMailer.cfg.ModeratorEmails
}

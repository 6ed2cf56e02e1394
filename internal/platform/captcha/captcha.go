package captcha

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/config"
	"github.com/valyala/fasthttp"
)

// verifyTimeout 是单次验证码校验请求的超时时间
const verifyTimeout = 5 * time.Second

// Verifier 封装了对reCAPTCHA siteverify接口的调用。
type Verifier struct {
	cfg    config.CaptchaConfig
	client *fasthttp.Client
}

// globalVerifier 是模块级的单例实例
var globalVerifier *Verifier

// Initialize 创建全局的验证码校验器。
func Initialize(cfg config.CaptchaConfig) {
	globalVerifier = &Verifier{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  verifyTimeout,
			WriteTimeout: verifyTimeout,
		},
	}
	if !cfg.Enabled {
		fmt.Println("警告: 验证码校验已禁用 (开发模式)，所有提交将被放行。")
	}
}

// siteverifyResponse 对应reCAPTCHA接口返回的JSON结构
type siteverifyResponse struct {
	Success bool `json:"success"`
}

// VerifyToken 校验一个前端提交的reCAPTCHA token。
// 返回token是否有效；网络或接口错误时返回error，由调用方映射为外部依赖失败。
func VerifyToken(clientToken string) (bool, error) {
	if globalVerifier == nil || !globalVerifier.cfg.Enabled {
		return true, nil
	}
	if clientToken == "" {
		return false, nil
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(globalVerifier.cfg.VerifyURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.PostArgs().Set("secret", globalVerifier.cfg.Secret)
	req.PostArgs().Set("response", clientToken)

	if err := globalVerifier.client.DoTimeout(req, resp, verifyTimeout); err != nil {
		return false, fmt.Errorf("无法请求验证码校验接口: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return false, fmt.Errorf("验证码校验接口返回异常状态码: %d", resp.StatusCode())
	}

	var result siteverifyResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return false, fmt.Errorf("无法解析验证码校验响应: %w", err)
	}
	return result.Success, nil
}

package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// secretKey 是用于签名的密钥。由InitializeSecretKey在启动时设置。
var secretKey []byte

// MaxTokenAge 是身份令牌的新鲜度窗口。
// 超过该窗口的令牌视为过期，服务端没有其他吊销机制。
const MaxTokenAge = 48 * time.Hour

// UserPayload 定义了身份令牌中被签名的数据结构。
type UserPayload struct {
	UserID      string `json:"id"`
	CanModerate bool   `json:"mod,omitempty"`
	IssuedAt    int64  `json:"iat"`
}

// InitializeSecretKey 设置HMAC签名密钥。
// 如果配置中没有提供密钥，则生成一个密码学安全的32字节随机密钥；
// 此时已签发的令牌会在重启后全部失效。
func InitializeSecretKey(configured string) {
	if configured != "" {
		secretKey = []byte(configured)
		return
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("警告: 未配置令牌密钥，已生成随机密钥，重启后现有令牌将失效。")
}

// GenerateUserToken 为一个用户签发身份令牌。
// 令牌格式为 base64url(payload JSON) + "." + base64url(HMAC-SHA256签名)。
func GenerateUserToken(userID string, canModerate bool, issuedAt time.Time) (string, error) {
	payload := UserPayload{
		UserID:      userID,
		CanModerate: canModerate,
		IssuedAt:    issuedAt.Unix(),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化令牌payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	encodedSignature := base64.RawURLEncoding.EncodeToString(signature)
	return encodedPayload + "." + encodedSignature, nil
}

// DecodeUserToken 验证令牌的签名并解出payload。
// 签名不匹配或格式错误时返回error；本函数不检查新鲜度。
func DecodeUserToken(tokenStr string) (*UserPayload, error) {
	parts := strings.SplitN(tokenStr, ".", 2)
	if len(parts) != 2 {
		return nil, errors.New("令牌格式错误")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errors.New("令牌payload解码失败")
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("令牌签名解码失败")
	}

	// 重新计算签名，使用hmac.Equal做时间恒定的比较，防止时序攻击
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)
	if !hmac.Equal(expectedSignature, actualSignature) {
		return nil, errors.New("令牌签名无效")
	}

	var payload UserPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, errors.New("无法解析令牌payload")
	}
	return &payload, nil
}

// IsFresh 检查payload是否仍在新鲜度窗口之内。
func IsFresh(payload *UserPayload, now time.Time) bool {
	issuedAt := time.Unix(payload.IssuedAt, 0)
	return now.Sub(issuedAt) <= MaxTokenAge
}

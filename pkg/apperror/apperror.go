package apperror

import (
	"errors"
	"fmt"
)

// Code 定义了业务错误的封闭式枚举类型。
// 传输层（gin handler）只根据Code决定HTTP状态码，核心逻辑不感知HTTP。
type Code string

const (
	// CodeNotFound 表示查询没有命中任何截图或用户（例如：所有截图都已被解出）
	CodeNotFound Code = "NOT_FOUND"
	// CodeUnauthenticated 表示操作需要一个持久化身份，而调用者没有
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	// CodeValidation 表示输入不合法（缺少必填字段、枚举值越界等）
	CodeValidation Code = "VALIDATION"
	// CodeExternalDependency 表示外部协作方（验证码、邮件）调用失败
	CodeExternalDependency Code = "EXTERNAL_DEPENDENCY_FAILURE"
	// CodeExpiredToken 表示一次性令牌（如退订令牌）已超过新鲜度窗口
	CodeExpiredToken Code = "EXPIRED_TOKEN"
)

// Error 是整个核心引擎使用的带标签错误类型。
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New 创建一个带有指定错误码的业务错误。
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf 是New的格式化版本。
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf 从任意error中提取业务错误码。
// 如果err不是*Error（或未包装*Error），返回空字符串。
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is 判断err是否携带指定的错误码。
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

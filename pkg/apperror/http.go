package apperror

import "net/http"

// HTTPStatus 是错误码到HTTP状态码的映射，仅供传输层(handler)使用。
// 核心逻辑只使用Code，不感知这里的映射。
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated, CodeExpiredToken:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeExternalDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

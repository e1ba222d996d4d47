package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Status  string `json:"status"`  // 항상 "error"
	Message string `json:"message"` // 사람이 읽는 메시지
	Code    string `json:"code"`    // 에러 코드 (codes.go 참조)
}

// StatusFor Kind 를 HTTP 상태 코드로 변환
// strict=false 이면 기존 API 와 동일하게 모든 에러를 404 로 응답함
func StatusFor(kind Kind, strict bool) int {
	if !strict {
		return http.StatusNotFound
	}

	switch kind {
	case KindCartNotFound, KindProductNotInCart:
		return http.StatusNotFound
	case KindInvalidQuantity, KindInvalidInput:
		return http.StatusBadRequest
	case KindDuplicateProduct:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond 에러를 분류하여 응답 반환
func Respond(c *gin.Context, err error, strict bool) {
	var appErr *Error
	if !As(err, &appErr) {
		appErr = Wrap(KindUnknown, err, "internal server error")
	}

	c.JSON(StatusFor(appErr.Kind, strict), ErrorResponse{
		Status:  "error",
		Message: appErr.PublicMessage(),
		Code:    appErr.Kind.Code(),
	})
}

// RespondWithError 코드와 메시지를 직접 지정하는 에러 응답 헬퍼
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    errorCode,
	})
}

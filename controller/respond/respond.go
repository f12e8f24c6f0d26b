package respond

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snap-vault/vaulterr"
)

// Response unified API response structure
type Response struct {
	Code           int         `json:"code"`            // 0 on success, HTTP status on failure
	Message        string      `json:"message"`         // Human-readable outcome
	Error          string      `json:"error,omitempty"` // Error kind name, e.g. RECEIPT_TIMEOUT
	Data           interface{} `json:"data,omitempty"`
	ProcessingTime string      `json:"processing_time,omitempty"`
}

const startTimeKey = "request_start_time"

// TimingMiddleware record request start time for the response envelope
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		c.Next()
	}
}

func processingTime(c *gin.Context) string {
	if start, ok := c.Get(startTimeKey); ok {
		if startTime, ok := start.(time.Time); ok {
			return fmt.Sprintf("%.3fms", float64(time.Since(startTime).Microseconds())/1000)
		}
	}
	return ""
}

// Success respond with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:           0,
		Message:        "success",
		Data:           data,
		ProcessingTime: processingTime(c),
	})
}

// InvalidParam respond with a parameter validation failure
func InvalidParam(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:           http.StatusBadRequest,
		Message:        message,
		ProcessingTime: processingTime(c),
	})
}

// NotFound respond with a not-found failure
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:           http.StatusNotFound,
		Message:        message,
		ProcessingTime: processingTime(c),
	})
}

// Failed classify an error and respond with the matching status. The
// error kind rides in the envelope so clients can switch on it without
// parsing message text.
func Failed(c *gin.Context, err error) {
	kind := vaulterr.KindOf(err)
	status := statusFor(kind)
	c.JSON(status, Response{
		Code:           status,
		Message:        err.Error(),
		Error:          kind.String(),
		ProcessingTime: processingTime(c),
	})
}

// statusFor map an error kind onto an HTTP status
func statusFor(kind vaulterr.Kind) int {
	switch kind {
	case vaulterr.KindInvalidAmount,
		vaulterr.KindInvalidUnlockDate,
		vaulterr.KindUnsupportedFormat,
		vaulterr.KindInvalidUsernameLength,
		vaulterr.KindSenderNotRegistered,
		vaulterr.KindRecipientNotRegistered:
		return http.StatusBadRequest
	case vaulterr.KindWalletNotConnected:
		return http.StatusUnauthorized
	case vaulterr.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case vaulterr.KindNotOpenable:
		return http.StatusForbidden
	case vaulterr.KindVaultNotFound:
		return http.StatusNotFound
	case vaulterr.KindUsernameTaken, vaulterr.KindUserRejected:
		return http.StatusConflict
	case vaulterr.KindContentUnavailable, vaulterr.KindAllGatewaysFailed:
		return http.StatusBadGateway
	case vaulterr.KindReceiptTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

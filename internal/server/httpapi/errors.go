package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgInternal     = "Internal server error"
	msgNotFound     = "Not found"
	msgUnauthorized = "Unauthorized"
	msgTooMany      = "Too many requests"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, common.ErrorValidation.Error()+": "); ok {
		return rest
	}
	return msg
}

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: msg})
}

// fail writes err as a {message} body. notFound replaces the generic 404
// message on routes that address a specific resource. Internal failures are
// logged with the request id and never echoed.
func (h *handlers) fail(c *gin.Context, err error, notFound string) {
	status := statusFor(err)

	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = validationMessage(err)
	case http.StatusUnauthorized:
		msg = msgUnauthorized
		if errors.Is(err, common.ErrTokenExpired) {
			msg = "Token expired"
		}
	case http.StatusConflict:
		msg = "Email already registered"
	case http.StatusNotFound:
		msg = msgNotFound
		if notFound != "" {
			msg = notFound
		}
	case http.StatusServiceUnavailable:
		msg = "Feature is not configured"
	case http.StatusBadGateway:
		msg = "Upstream service failed"
		h.log.Warn(c.Request.Context(), "upstream failure", "request_id", requestID(c), "error", err)
	default:
		msg = msgInternal
		h.log.Error(c.Request.Context(), "request failed", "request_id", requestID(c), "path", c.FullPath(), "error", err)
	}

	_ = c.Error(err)
	abortWithMessage(c, status, msg)
}

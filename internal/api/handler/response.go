package handler

import (
	"errors"
	"net/http"

	"parking_tracker/internal/api/middleware"
	"parking_tracker/internal/logger"
	"parking_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeValidation     = "validation_error"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal_server_error"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps service errors onto HTTP statuses and logs the cause.
func respondError(c *gin.Context, err error) {
	var (
		vErr  *service.ValidationError
		nfErr *service.NotFoundError
	)
	status, body := http.StatusInternalServerError, ErrorResponse{Code: ErrCodeInternal, Message: "Internal Server Error"}
	switch {
	case errors.As(err, &vErr):
		status, body = http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: vErr.Error()}
	case errors.As(err, &nfErr):
		status, body = http.StatusNotFound, ErrorResponse{Code: ErrCodeNotFound, Message: nfErr.Error()}
	}

	entry := logger.Log.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"path":       c.FullPath(),
		"status":     status,
	}).WithError(err)
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Info("request not served")
	}
	c.JSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	logger.Log.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"path":       c.FullPath(),
	}).WithError(err).Info("malformed request body")
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeInvalidPayload, Message: "request body is not valid JSON for this endpoint"})
}

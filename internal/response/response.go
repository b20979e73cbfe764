package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lodgio/service-booking/internal/apperror"
)

// envelope is the standard success body.
type envelope struct {
	Data interface{} `json:"data"`
}

// errorBody carries the machine-readable code alongside the message.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// paginatedEnvelope wraps list responses with paging metadata.
type paginatedEnvelope struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 response with the standard envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Created writes a 201 response with the standard envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 list response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{Data: items, Total: total, Page: page, Limit: limit})
}

// BadRequest writes a 400 with an INVALID_INPUT body.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Code: string(apperror.CodeInvalidInput), Message: message})
}

// Error maps an application error to its HTTP status and writes the error body.
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, errorBody{
			Code:    string(apperror.CodeInternal),
			Message: "internal server error",
		})
		return
	}

	c.JSON(statusFor(appErr.Code), errorBody{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}

func statusFor(code apperror.Code) int {
	switch code {
	case apperror.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperror.CodeForbidden:
		return http.StatusForbidden
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeConflict:
		return http.StatusConflict
	case apperror.CodeInvalidInput:
		return http.StatusBadRequest
	case apperror.CodeInvalidState, apperror.CodeUnavailable:
		return http.StatusUnprocessableEntity
	case apperror.CodeExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

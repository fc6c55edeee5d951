package httperr

import (
	"net/http"

	"commerce-core/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"status"`
	Error  struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

var statusByCode = map[string]int{
	"A001": http.StatusForbidden,

	"P001": http.StatusNotFound,
	"P006": http.StatusNotFound,
	"O002": http.StatusNotFound,
	"C002": http.StatusNotFound,
	"U001": http.StatusNotFound,

	"CART001": http.StatusNotFound,

	"P002":   http.StatusConflict,
	"P004":   http.StatusConflict,
	"O004":   http.StatusConflict,
	"O005":   http.StatusConflict,
	"O006":   http.StatusConflict,
	"O009":   http.StatusConflict,
	"C001":   http.StatusConflict,
	"C004":   http.StatusConflict,
	"C005":   http.StatusConflict,
	"A004":   http.StatusConflict,
	"PAY003": http.StatusConflict,

	"P005":   http.StatusUnprocessableEntity,
	"O003":   http.StatusUnprocessableEntity,
	"O008":   http.StatusUnprocessableEntity,
	"O012":   http.StatusUnprocessableEntity,
	"C003":   http.StatusUnprocessableEntity,
	"PAY001": http.StatusUnprocessableEntity,
}

// StatusOf maps an error to its HTTP status. Domain errors without an entry are client errors (400);
// invariant violations and everything else are 500.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errs.IsInvariant(err) {
		return http.StatusInternalServerError
	}
	code := errs.CodeOf(err)
	if code == "" {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusBadRequest
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errs.New(msg)
	}

	resp := Response{Status: status}
	resp.Error.Code = errs.CodeOf(err)
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort renders err with its mapped status. Domain messages are returned as is, anything else is hidden.
func Abort(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := "Internal server error"
	if status < http.StatusInternalServerError {
		var de *errs.DomainError
		if errs.As(err, &de) {
			msg = de.Message
		}
	}
	AbortWithError(c, status, err, msg, nil)
}

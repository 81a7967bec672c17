package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/server/http/dto"
	"github.com/polkiloo/orderpay/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDContextKey)
}

// respondError writes the error body for err. Domain kinds expose their own
// message and status; anything else is reported as an internal error.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var kind *domainErrors.KindError
	if errors.As(err, &kind) {
		c.JSON(kind.StatusCode(), dto.Error(kind.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.Error("internal server error"))
}

// bindJSON decodes and validates the request body, writing the failure response itself.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("invalid request body"))
		return false
	}
	if err := dto.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationFailure(err))
		return false
	}
	return true
}

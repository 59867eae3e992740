package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-ingestion/internal/api/shared/errors"
	"github.com/feral-file/ff-ingestion/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{Error: apierrors.NewBadRequestError(message, details...)})
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.ErrorResponse{Error: apierrors.NewNotFoundError(message, details...)})
}

// respondError responds with the status carried by an APIError, or a generic internal error otherwise
func respondError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.StatusCode(), apierrors.ErrorResponse{Error: apiErr})
		return
	}

	c.JSON(http.StatusInternalServerError, apierrors.ErrorResponse{Error: apierrors.NewInternalError(message)})
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parceldesk/internal/core/apperror"
	appctx "parceldesk/internal/core/context"
	"parceldesk/internal/infrastructure/storage/postgres"
	"parceldesk/pkg/logger"
)

// ErrorHandler converts errors registered on the Gin context into JSON
// responses. It is the single place that writes error bodies; handlers only
// call c.Error and abort.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}

		// A handler already wrote a response, nothing to do.
		if c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()

		if appErr, ok := apperror.AsAppError(err.Err); ok {
			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			}
			if len(appErr.Details) > 0 {
				body["details"] = appErr.Details
			}

			if appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Error(ctx, "request failed",
					"code", appErr.Code,
					"error", appErr.Error(),
					"path", c.Request.URL.Path,
				)
			}

			failIdempotency(c, appErr.HTTPStatus, body)
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(ctx, "unhandled error",
			"error", err.Err.Error(),
			"path", c.Request.URL.Path,
		)

		body := gin.H{
			"code":       apperror.CodeInternal,
			"message":    "internal server error",
			"request_id": appctx.GetRequestID(ctx),
		}
		failIdempotency(c, http.StatusInternalServerError, body)
		c.JSON(http.StatusInternalServerError, body)
	}
}

// failIdempotency records the error response under the request's idempotency
// key so retries replay the same failure instead of re-running the operation.
func failIdempotency(c *gin.Context, statusCode int, body any) {
	key, exists := c.Get("idempotency_key")
	if !exists {
		return
	}
	storeVal, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	store, ok := storeVal.(*postgres.IdempotencyStore)
	if !ok {
		return
	}

	_ = store.FailKey(c.Request.Context(), key.(string), statusCode, "application/json", body)
}

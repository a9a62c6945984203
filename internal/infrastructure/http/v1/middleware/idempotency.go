package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appctx "parceldesk/internal/core/context"
	"parceldesk/internal/infrastructure/storage/postgres"
)

const (
	headerIdempotencyKey = "X-Idempotency-Key"

	// maxIdempotentBodySize caps the body we are willing to hash.
	maxIdempotentBodySize = 1 << 20 // 1 MiB
)

// Idempotency deduplicates mutating requests carrying X-Idempotency-Key.
// A retried request with the same key, operation and body gets the cached
// response; this keeps tracking numbers and ledger entries from being
// issued twice for one client action.
func Idempotency(store *postgres.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(headerIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotentBodySize+1))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if len(body) > maxIdempotentBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"code":    "REQUEST_TOO_LARGE",
				"message": "request body too large for idempotent processing",
			})
			return
		}
		// Restore the body for downstream handlers.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])
		operation := c.Request.Method + " " + c.FullPath()
		userID := appctx.GetUserID(c.Request.Context())

		replay, err := store.AcquireKey(c.Request.Context(), key, userID, operation, requestHash)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		if replay != nil {
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		// Key acquired: expose it so handlers and the error middleware can
		// record the outcome for later replays.
		c.Set("idempotency_key", key)
		c.Set("idempotency_store", store)

		c.Next()
	}
}

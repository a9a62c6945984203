package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "parceldesk/internal/core/context"
)

const (
	headerUserID   = "X-User-ID"
	headerTenantID = "X-Tenant-ID"
	headerBranchID = "X-Branch-ID"
)

// UserContext propagates the acting operator into the request context.
// Identity is asserted by the gateway in front of this service, so the
// headers are trusted as-is; absent headers leave the audit columns empty.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := &appctx.UserContext{
			UserID:   c.GetHeader(headerUserID),
			TenantID: c.GetHeader(headerTenantID),
			BranchID: c.GetHeader(headerBranchID),
		}

		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-engagement-api/pkg/errors"
	"github.com/noah-isme/sma-engagement-api/pkg/response"
)

// ContextTenantKey stores the resolved tenant identifier on the gin context.
const ContextTenantKey = "tenant_id"

// DefaultTenantHeader carries the tenant when no header name is configured.
const DefaultTenantHeader = "X-Tenant-ID"

// TenantScope resolves the tenant from the configured header, falling back to the tenantId query
// parameter. Requests without a tenant are rejected.
func TenantScope(header string) gin.HandlerFunc {
	if strings.TrimSpace(header) == "" {
		header = DefaultTenantHeader
	}
	return func(c *gin.Context) {
		tenant := strings.TrimSpace(c.GetHeader(header))
		if tenant == "" {
			tenant = strings.TrimSpace(c.Query("tenantId"))
		}
		if tenant == "" {
			response.Error(c, appErrors.ErrMissingTenant)
			c.Abort()
			return
		}
		c.Set(ContextTenantKey, tenant)
		c.Next()
	}
}

// TenantFromContext returns the tenant resolved by TenantScope.
func TenantFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get(ContextTenantKey); ok {
		if tenant, ok := value.(string); ok {
			return tenant
		}
	}
	return ""
}

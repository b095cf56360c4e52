package tenantcontext

import "github.com/gofiber/fiber/v2"

// KeyTenantContext is the fiber locals key the middleware stores the
// resolved tenant under.
const KeyTenantContext = "TENANT_CONTEXT"

// TenantContext carries the authenticated tenant through a request.
type TenantContext struct {
	TenantID uint
	Handle   string
	Plan     string
}

// Set stores the tenant context on the request.
func Set(c *fiber.Ctx, tc TenantContext) {
	c.Locals(KeyTenantContext, tc)
}

// Get returns the tenant context for the request, or a zero value when the
// request was not authenticated.
func Get(c *fiber.Ctx) TenantContext {
	if tc, ok := c.Locals(KeyTenantContext).(TenantContext); ok {
		return tc
	}
	return TenantContext{}
}

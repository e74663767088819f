package route

import (
	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
)

// RegisterReturnRoutes mounts supplier return processing; staff and owner
// only
func RegisterReturnRoutes(r *gin.RouterGroup, c *controller.ReturnController, secret string) {
	returns := r.Group("/returns")
	returns.Use(auth.Middleware(secret), auth.RequireRole(auth.RoleOwner, auth.RoleStaff))
	{
		returns.POST("", c.Process)
		returns.GET("", c.List)
		returns.GET("/:id", c.Get)
	}
}

package route

import (
	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
)

// RegisterRequestRoutes mounts the custom request lifecycle
func RegisterRequestRoutes(r *gin.RouterGroup, c *controller.RequestController, secret string) {
	requests := r.Group("/requests")
	requests.Use(auth.Middleware(secret))
	{
		requests.POST("", c.Create)
		requests.GET("/:id", c.Get)
		requests.GET("/:id/history", c.History)
		requests.PATCH("/:id/status", c.UpdateStatus)

		staff := requests.Group("")
		staff.Use(auth.RequireRole(auth.RoleOwner, auth.RoleStaff))
		{
			staff.GET("", c.ListByStatus)
			staff.POST("/:id/quote", c.Quote)
		}
	}
}

package route

import (
	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
)

// RegisterOrderRoutes mounts order placement, lookup, and status changes
func RegisterOrderRoutes(r *gin.RouterGroup, c *controller.OrderController, secret string) {
	orders := r.Group("/orders")
	orders.Use(auth.Middleware(secret))
	{
		orders.POST("", c.Place)
		orders.GET("/:id", c.Get)
		orders.GET("/:id/history", c.History)
		orders.GET("/number/:number", c.GetByNumber)

		staff := orders.Group("")
		staff.Use(auth.RequireRole(auth.RoleOwner, auth.RoleStaff))
		{
			staff.GET("", c.ListByDate)
			staff.PATCH("/:id/status", c.UpdateStatus)
			staff.PATCH("/:id/payment", c.UpdatePayment)
		}
	}
}

package route

import (
	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
)

// RegisterInventoryRoutes mounts the catalog and stock endpoints. Reads are
// open to any authenticated caller; writes are staff and owner only.
func RegisterInventoryRoutes(r *gin.RouterGroup, c *controller.InventoryController, secret string) {
	products := r.Group("/products")
	products.Use(auth.Middleware(secret))
	{
		products.GET("", c.ListProducts)
		products.GET("/:id", c.GetProduct)
		products.GET("/:id/stock", c.GetStock)

		staff := products.Group("")
		staff.Use(auth.RequireRole(auth.RoleOwner, auth.RoleStaff))
		{
			staff.POST("", c.CreateProduct)
			staff.POST("/:id/batches", c.CheckIn)
			staff.GET("/:id/batches", c.ListBatches)
		}
	}
}

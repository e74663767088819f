package route

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
)

// Controllers bundles everything the router mounts
type Controllers struct {
	Auth      *controller.AuthController
	Inventory *controller.InventoryController
	Orders    *controller.OrderController
	Returns   *controller.ReturnController
	Requests  *controller.RequestController
}

// SetupRouter builds the gin engine with CORS, health check, and all
// API routes under /api/v1
func SetupRouter(c Controllers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	RegisterAuthRoutes(api, c.Auth, jwtSecret)
	RegisterInventoryRoutes(api, c.Inventory, jwtSecret)
	RegisterOrderRoutes(api, c.Orders, jwtSecret)
	RegisterReturnRoutes(api, c.Returns, jwtSecret)
	RegisterRequestRoutes(api, c.Requests, jwtSecret)

	return r
}

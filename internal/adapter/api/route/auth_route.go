package route

import (
	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/controller"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
)

// RegisterAuthRoutes mounts login and account management
func RegisterAuthRoutes(r *gin.RouterGroup, c *controller.AuthController, secret string) {
	r.POST("/auth/login", c.Login)

	users := r.Group("/auth/users")
	users.Use(auth.Middleware(secret), auth.RequireRole(auth.RoleOwner))
	{
		users.POST("", c.Register)
	}
}

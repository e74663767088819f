package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/dto"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// AuthController handles login and staff account creation
type AuthController struct {
	auth   *service.AuthService
	logger logger.Logger
}

// NewAuthController creates an AuthController
func NewAuthController(authService *service.AuthService, logger logger.Logger) *AuthController {
	return &AuthController{auth: authService, logger: logger}
}

// Login authenticates staff credentials and returns a token
// @Summary Log in
// @Description Authenticates a user and returns a signed JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Username and password"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	token, u, err := c.auth.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewLoginResponse(token, u))
}

// Register creates a staff account; owner only
// @Summary Create user
// @Description Creates a staff or customer account
// @Tags auth
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param user body dto.RegisterRequest true "Account details"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/users [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	u, err := c.auth.Register(ctx.Request.Context(), req.Username, req.Password, auth.Role(req.Role))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("user created", gin.H{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     u.Role,
	}))
}

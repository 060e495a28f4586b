package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marhabatours/api/internal/config"
	"github.com/marhabatours/api/internal/models"
	"github.com/marhabatours/api/internal/services"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user := &models.User{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		}
		created, err := u.Register(c.Request.Context(), user, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created.PublicView(), "account created"))
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns the access token both in the body
// and as the jwt cookie the middleware falls back to. The cookie expires with
// the token itself.
func Login(u *services.UserService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, token, err := u.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.SetCookie("jwt", token, int(cfg.JWTTTL.Seconds()), "/", "", cfg.IsProduction(), true)

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"token": token,
			"user":  user.PublicView(),
		}, "logged in"))
	}
}

func Logout(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("jwt", "", -1, "/", "", cfg.IsProduction(), true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out"))
	}
}

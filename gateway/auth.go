package gateway

import (
	"net/http"

	"github.com/example/fooddash/pkg/service"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (g *Gateway) register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "Invalid request body")
		return
	}

	result, err := g.services.Auth.Register(c.Request.Context(), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful", result)
}

func (g *Gateway) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "Email and password are required")
		return
	}

	result, err := g.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", result)
}

func (g *Gateway) me(c *gin.Context) {
	user, err := g.services.Auth.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", user)
}

func (g *Gateway) updateProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, "Invalid request body")
		return
	}

	user, err := g.services.Auth.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}

// Package handler contains HTTP handlers for the API.
package handler

import (
	"net/http"

	"carpool/internal/models"
	"carpool/internal/service"
	"carpool/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for signup, login and the session.
type AuthHandler struct {
	service service.AuthServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service service.AuthServicer) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignUp godoc
// @Summary      Create an account
// @Description  Register an employee. The new account becomes the current session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.SignUpRequest  true  "Account details"
// @Success      201      {object}  response.Response{data=models.AuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.SignUp(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, models.MsgSignedUp, result)
}

// LogIn godoc
// @Summary      Log in
// @Description  Authenticate with an employee ID or email and a password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=models.AuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) LogIn(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.LogIn(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, models.MsgLoggedIn, result)
}

// LogOut godoc
// @Summary      Log out
// @Description  Clear the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) LogOut(c *gin.Context) {
	if err := h.service.LogOut(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, models.MsgLoggedOut, nil)
}

// Session godoc
// @Summary      Current session
// @Description  Report whether an employee is logged in and who
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=models.SessionResponse}
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	response.Success(c, h.service.Session(c.Request.Context()))
}

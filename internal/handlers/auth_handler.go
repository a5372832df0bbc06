package handlers

import (
	"terang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles OTP login requests.
type AuthHandler struct {
	service *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// RegisterRoutes registers the auth routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/send-otp", h.HandleSendOTP)
	authRoutes.Post("/verify-otp", h.HandleVerifyOTP)
}

type sendOTPRequest struct {
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// HandleSendOTP mails a one-time login code to the address.
func (h *AuthHandler) HandleSendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	if err := h.service.RequestOTP(req.Email, req.Mobile); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "OTP sent to email",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// HandleVerifyOTP exchanges a valid one-time code for a JWT.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	token, user, err := h.service.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "OTP verified",
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

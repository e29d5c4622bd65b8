package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// UserHandler handles registration, status and purchase requests.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register creates a free-plan user. Registering an existing uid is a no-op.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Identity-provider uid and email"
// @Success      201   {object}  messageResponse
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	created, err := h.service.Register(c.Request().Context(), req.UID, req.Email)
	if err != nil {
		return err
	}
	if !created {
		return c.JSON(http.StatusOK, messageResponse{Message: "User already exists"})
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// Status returns the user's plan and today's usage.
//
// @Summary      Get user status
// @Tags         users
// @Produce      json
// @Param        uid  path      string  true  "User uid"
// @Success      200  {object}  userStatusResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /get-user-status/{uid} [get]
func (h *UserHandler) Status(c echo.Context) error {
	st, err := h.service.Status(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userStatusResponse{
		UID:              st.UID,
		PlanType:         st.Plan,
		GenerationsToday: st.GenerationsToday,
		DailyLimit:       st.DailyLimit,
	})
}

// VerifyPurchase moves a user to a paid plan.
//
// @Summary      Verify a purchase
// @Description  The purchase token is accepted without store-side verification.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      verifyPurchaseRequest  true  "Purchase details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /verify-purchase [post]
func (h *UserHandler) VerifyPurchase(c echo.Context) error {
	var req verifyPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	// Missing fields are reported like any other rejected purchase.
	if err := c.Validate(&req); err != nil {
		return domain.ErrInvalidPlan
	}

	user, err := h.service.VerifyPurchase(c.Request().Context(), req.UID, req.PlanType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Plan updated to " + string(user.Plan)})
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lodgio/service-booking/internal/application"
	"github.com/lodgio/service-booking/internal/auth"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
	"github.com/lodgio/service-booking/internal/middleware"
	"github.com/lodgio/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers booking and availability routes on the given
// router group. Availability queries are public; everything else requires
// authentication.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	rooms := r.Group("/api/v1/rooms")
	{
		rooms.GET("/:id/availability", h.CheckAvailability)
		rooms.GET("/:id/bookings", authMW, h.ListRoomBookings)
	}

	hotels := r.Group("/api/v1/hotels")
	{
		hotels.GET("/:id/available-rooms", h.ListAvailableRooms)
		hotels.GET("/:id/bookings", authMW, h.ListHotelBookings)
	}

	users := r.Group("/api/v1/users")
	users.Use(authMW)
	{
		users.GET("/:id/bookings", h.ListUserBookings)
	}

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleCustomer), h.CreateHold)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/confirm", middleware.RequireRole(auth.RoleCustomer), h.ConfirmBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.POST("/:id/payment/cash", h.AcceptCashPayment)
	}
}

// CreateHold handles POST /api/v1/bookings.
func (h *BookingHandler) CreateHold(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Hold(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.mutate(c, func(actor application.Actor, bookingID uuid.UUID) error {
		return h.service.Confirm(c.Request.Context(), actor, bookingID)
	})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	h.mutate(c, func(actor application.Actor, bookingID uuid.UUID) error {
		return h.service.Cancel(c.Request.Context(), actor, bookingID, body.Reason)
	})
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.mutate(c, func(actor application.Actor, bookingID uuid.UUID) error {
		return h.service.UpdateStatus(c.Request.Context(), actor, bookingID, bookingDomain.Status(body.Status))
	})
}

// AcceptCashPayment handles POST /api/v1/bookings/:id/payment/cash.
func (h *BookingHandler) AcceptCashPayment(c *gin.Context) {
	h.mutate(c, func(actor application.Actor, bookingID uuid.UUID) error {
		return h.service.AcceptCashPayment(c.Request.Context(), actor, bookingID)
	})
}

// ListUserBookings handles GET /api/v1/users/:id/bookings.
func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	h.listByID(c, h.service.ListUserBookings)
}

// ListHotelBookings handles GET /api/v1/hotels/:id/bookings.
func (h *BookingHandler) ListHotelBookings(c *gin.Context) {
	h.listByID(c, h.service.ListHotelBookings)
}

// ListRoomBookings handles GET /api/v1/rooms/:id/bookings.
func (h *BookingHandler) ListRoomBookings(c *gin.Context) {
	h.listByID(c, h.service.ListRoomBookings)
}

// CheckAvailability handles GET /api/v1/rooms/:id/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	checkIn, checkOut, ok := dateRangeQuery(c)
	if !ok {
		return
	}

	result, err := h.service.CheckRoomAvailability(c.Request.Context(), roomID, checkIn, checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListAvailableRooms handles GET /api/v1/hotels/:id/available-rooms.
func (h *BookingHandler) ListAvailableRooms(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel ID")
		return
	}

	checkIn, checkOut, ok := dateRangeQuery(c)
	if !ok {
		return
	}

	result, err := h.service.ListAvailableRooms(c.Request.Context(), hotelID, checkIn, checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// mutate runs one booking mutation and responds with the refreshed booking.
func (h *BookingHandler) mutate(c *gin.Context, fn func(actor application.Actor, bookingID uuid.UUID) error) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := fn(actor, bookingID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// listByID runs one paginated listing keyed by a path ID.
func (h *BookingHandler) listByID(
	c *gin.Context,
	list func(ctx context.Context, actor application.Actor, id uuid.UUID, page, limit int) ([]application.BookingDTO, int64, error),
) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}

	page, limit := parsePagination(c)

	items, total, err := list(c.Request.Context(), actor, id, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// actorFrom resolves the authenticated actor placed by the auth middleware.
func actorFrom(c *gin.Context) (application.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return application.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return application.Actor{}, false
	}
	return application.Actor{ID: userID, Role: role}, true
}

// dateRangeQuery extracts the check_in and check_out query parameters.
func dateRangeQuery(c *gin.Context) (string, string, bool) {
	checkIn := c.Query("check_in")
	checkOut := c.Query("check_out")
	if checkIn == "" || checkOut == "" {
		response.BadRequest(c, "check_in and check_out query parameters are required")
		return "", "", false
	}
	return checkIn, checkOut, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

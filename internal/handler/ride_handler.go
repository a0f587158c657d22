package handler

import (
	"net/http"

	"carpool/internal/middleware"
	"carpool/internal/models"
	"carpool/internal/service"
	"carpool/pkg/response"

	"github.com/gin-gonic/gin"
)

// RideHandler handles HTTP requests for the ride board. Every route acts as
// the employee named in the bearer token.
type RideHandler struct {
	service service.RideServicer
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(service service.RideServicer) *RideHandler {
	return &RideHandler{service: service}
}

// AddRide godoc
// @Summary      Offer a ride
// @Description  Post today's ride offer. Each employee may offer one ride per day.
// @Tags         rides
// @Accept       json
// @Produce      json
// @Param        request  body      models.AddRideRequest  true  "Ride details"
// @Success      201      {object}  response.Response{data=models.Ride}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Security     BearerAuth
// @Router       /rides [post]
func (h *RideHandler) AddRide(c *gin.Context) {
	var req models.AddRideRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	ride, err := h.service.AddRide(c.Request.Context(), middleware.GetEmployeeID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, models.MsgRideAdded, ride)
}

// BookRide godoc
// @Summary      Book a seat
// @Description  Reserve one seat on another employee's ride
// @Tags         rides
// @Produce      json
// @Param        id   path      string  true  "Ride ID"
// @Success      200  {object}  response.Response{data=models.Ride}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /rides/{id}/book [post]
func (h *RideHandler) BookRide(c *gin.Context) {
	ride, err := h.service.BookRide(c.Request.Context(), middleware.GetEmployeeID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, models.MsgRideBooked, ride)
}

// ListRides godoc
// @Summary      List today's rides
// @Tags         rides
// @Produce      json
// @Success      200  {object}  response.Response{data=models.RideListResponse}
// @Failure      401  {object}  response.Response
// @Security     BearerAuth
// @Router       /rides [get]
func (h *RideHandler) ListRides(c *gin.Context) {
	response.Success(c, models.NewRideListResponse(h.service.AllRides(c.Request.Context())))
}

// AvailableRides godoc
// @Summary      Match rides
// @Description  Rides with a free seat departing within the matching window after the given time (default now)
// @Tags         rides
// @Produce      json
// @Param        time         query     string  false  "Departure from, HH:MM"
// @Param        vehicleType  query     string  false  "Bike or Car"
// @Success      200          {object}  response.Response{data=models.RideListResponse}
// @Failure      400          {object}  response.Response
// @Failure      401          {object}  response.Response
// @Security     BearerAuth
// @Router       /rides/available [get]
func (h *RideHandler) AvailableRides(c *gin.Context) {
	var query models.AvailableRidesQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	rides, err := h.service.AvailableRides(c.Request.Context(), &query)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, models.NewRideListResponse(rides))
}

// BookedRides godoc
// @Summary      My bookings
// @Description  Today's rides the caller holds a seat on
// @Tags         rides
// @Produce      json
// @Success      200  {object}  response.Response{data=models.RideListResponse}
// @Failure      401  {object}  response.Response
// @Security     BearerAuth
// @Router       /rides/booked [get]
func (h *RideHandler) BookedRides(c *gin.Context) {
	rides := h.service.BookedRides(c.Request.Context(), middleware.GetEmployeeID(c))
	response.Success(c, models.NewRideListResponse(rides))
}

// MyRide godoc
// @Summary      My offer
// @Description  The ride the caller offered today
// @Tags         rides
// @Produce      json
// @Success      200  {object}  response.Response{data=models.Ride}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /rides/mine [get]
func (h *RideHandler) MyRide(c *gin.Context) {
	ride, err := h.service.OfferedRide(c.Request.Context(), middleware.GetEmployeeID(c))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, ride)
}

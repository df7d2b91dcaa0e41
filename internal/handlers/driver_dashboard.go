package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/lifecycle"
	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
	"github.com/cleanwave/cleanwave-backend/pkg/utils"
)

// driverForUser resolves the DriverDetails row behind the session user.
func driverForUser(db *gorm.DB, userID uint) (*models.DriverDetails, error) {
	var driver models.DriverDetails
	if err := db.Where("user_id = ?", userID).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

// GetDriverAssignedBookings lists the bookings currently assigned to the
// driver.
func GetDriverAssignedBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driver, err := driverForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Driver profile not found"})
			return
		}

		var bookings []models.Booking
		if err := db.Preload("ServiceType").
			Preload("AssignedCleaner.User").
			Where("assigned_driver_id = ?", driver.ID).
			Order("service_date asc").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetDriverAvailability returns the driver's current availability, served
// from the cache mirror when warm.
func GetDriverAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driver, err := driverForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Driver profile not found"})
			return
		}

		status := driver.AvailabilityStatus
		if cached, err := services.GetResourceAvailability(c.Request.Context(), services.ResourceDriver, driver.ID); err == nil {
			status = cached
		}

		c.JSON(200, gin.H{"availabilityStatus": status})
	}
}

// UpdateDriverAvailability lets a driver flag themselves in or out of the
// pool.
func UpdateDriverAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			AvailabilityStatus models.AvailabilityStatus `json:"availabilityStatus" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.AvailabilityStatus != models.AvailabilityAvailable && input.AvailabilityStatus != models.AvailabilityUnavailable {
			c.JSON(400, gin.H{"error": "Invalid availability status"})
			return
		}

		driver, err := driverForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Driver profile not found"})
			return
		}

		if err := db.Model(driver).Update("availability_status", input.AvailabilityStatus).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}

		services.SetResourceAvailability(context.Background(), services.ResourceDriver, driver.ID, input.AvailabilityStatus)

		c.JSON(200, gin.H{"availabilityStatus": input.AvailabilityStatus})
	}
}

// UpdateDriverBookingStatus moves one of the driver's own bookings to EnRoute
// or Arrived and mails the customer a status update with team photos.
func UpdateDriverBookingStatus(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateBookingStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		driver, err := driverForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Driver profile not found"})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		actor := lifecycle.Actor{Role: models.RoleDriver, DriverID: driver.ID}
		eff, err := transitionBooking(db, &booking, input.Status, actor)
		if err != nil {
			transitionErrorResponse(c, err)
			return
		}

		if eff.SendDriverStatus {
			// Reload with the people on the job so the email can introduce them.
			var full models.Booking
			if err := db.Preload("AssignedDriver.User").
				Preload("AssignedCleaner.User").
				First(&full, booking.ID).Error; err == nil {
				driverImage, cleanerImage := "", ""
				if full.AssignedDriver != nil {
					driverImage = services.GetImageURL(full.AssignedDriver.ImageURL)
				}
				if full.AssignedCleaner != nil {
					cleanerImage = services.GetImageURL(full.AssignedCleaner.ImageURL)
				}
				if err := utils.SendDriverStatusEmail(&full, driverImage, cleanerImage); err != nil {
					log.Printf("Failed to send status email for booking %d: %v", booking.ID, err)
				}
			}
		}

		if userID, ok := customerUserID(booking.CustomerID); ok {
			hub.PushBookingStatus(userID, booking.ID, booking.BookingStatus)
		}

		c.JSON(200, gin.H{
			"message":       fmt.Sprintf("Booking marked as %s.", booking.BookingStatus),
			"bookingStatus": booking.BookingStatus,
		})
	}
}

// LogDispatchNote appends a free-text note from the driver against a booking.
func LogDispatchNote(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Note string `json:"note"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.Note == "" {
			c.JSON(400, gin.H{"error": "Note cannot be empty."})
			return
		}

		driver, err := driverForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Driver profile not found"})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.AssignedDriverID == nil || *booking.AssignedDriverID != driver.ID {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		note := models.DispatchNote{
			BookingID: booking.ID,
			DriverID:  driver.ID,
			Note:      input.Note,
		}
		if err := db.Create(&note).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to log note"})
			return
		}

		c.JSON(201, note)
	}
}

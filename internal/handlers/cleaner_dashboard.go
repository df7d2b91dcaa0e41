package handlers

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/lifecycle"
	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
	"github.com/cleanwave/cleanwave-backend/pkg/utils"
)

// cleanerForUser resolves the CleanerDetails row behind the session user.
func cleanerForUser(db *gorm.DB, userID uint) (*models.CleanerDetails, error) {
	var cleaner models.CleanerDetails
	if err := db.Where("user_id = ?", userID).First(&cleaner).Error; err != nil {
		return nil, err
	}
	return &cleaner, nil
}

// GetCleanerBookings lists the bookings currently assigned to the cleaner.
func GetCleanerBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cleaner, err := cleanerForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Cleaner profile not found"})
			return
		}

		var bookings []models.Booking
		if err := db.Preload("ServiceType").
			Where("assigned_cleaner_id = ?", cleaner.ID).
			Order("service_date asc").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetCleanerAvailability returns the cleaner's current availability, served
// from the cache mirror when warm.
func GetCleanerAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cleaner, err := cleanerForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Cleaner profile not found"})
			return
		}

		status := cleaner.AvailabilityStatus
		if cached, err := services.GetResourceAvailability(c.Request.Context(), services.ResourceCleaner, cleaner.ID); err == nil {
			status = cached
		}

		c.JSON(200, gin.H{"availabilityStatus": status})
	}
}

// UpdateCleanerAvailability lets a cleaner flag themselves in or out of the
// pool.
func UpdateCleanerAvailability(db *gorm.DB) gin.HandlerFunc {
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

		cleaner, err := cleanerForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Cleaner profile not found"})
			return
		}

		if err := db.Model(cleaner).Update("availability_status", input.AvailabilityStatus).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}

		services.SetResourceAvailability(context.Background(), services.ResourceCleaner, cleaner.ID, input.AvailabilityStatus)

		c.JSON(200, gin.H{"availabilityStatus": input.AvailabilityStatus})
	}
}

// UpdateCleanerBookingStatus moves one of the cleaner's own bookings through
// the lifecycle.
func UpdateCleanerBookingStatus(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateBookingStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		cleaner, err := cleanerForUser(db, c.GetUint("userId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Cleaner profile not found"})
			return
		}

		var booking models.Booking
		if err := db.Preload("ServiceType").First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		actor := lifecycle.Actor{Role: models.RoleCleaner, CleanerID: cleaner.ID}
		eff, err := transitionBooking(db, &booking, input.Status, actor)
		if err != nil {
			transitionErrorResponse(c, err)
			return
		}

		if eff.SendServiceComplete {
			if err := utils.SendServiceCompleteEmail(&booking); err != nil {
				log.Printf("Failed to send completion email for booking %d: %v", booking.ID, err)
			}
		}

		if userID, ok := customerUserID(booking.CustomerID); ok {
			hub.PushBookingStatus(userID, booking.ID, booking.BookingStatus)
		}

		c.JSON(200, gin.H{
			"message":       "Booking status updated",
			"bookingStatus": booking.BookingStatus,
		})
	}
}

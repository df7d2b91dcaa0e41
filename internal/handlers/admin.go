package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/lifecycle"
	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
	"github.com/cleanwave/cleanwave-backend/pkg/utils"
)

type AssignBookingInput struct {
	CleanerID *uint `json:"cleanerId"`
	DriverID  *uint `json:"driverId"`
}

type UpdateBookingStatusInput struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// GetAllBookings returns every booking with its service type name for the
// admin dashboard.
func GetAllBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bookings []models.Booking
		if err := db.Preload("ServiceType").
			Preload("AssignedCleaner.User").
			Preload("AssignedDriver.User").
			Order("service_date desc").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		response := make([]gin.H, 0, len(bookings))
		for _, b := range bookings {
			item := gin.H{
				"id":              b.ID,
				"customerId":      b.CustomerID,
				"fullName":        b.FullName,
				"email":           b.Email,
				"address":         b.Address,
				"city":            b.City,
				"serviceTypeName": b.ServiceType.Name,
				"serviceDate":     b.ServiceDate,
				"bookingAmount":   b.BookingAmount,
				"bookingStatus":   b.BookingStatus,
				"paymentStatus":   b.PaymentStatus,
			}
			if b.AssignedCleaner != nil {
				item["cleanerName"] = b.AssignedCleaner.User.FullName
			}
			if b.AssignedDriver != nil {
				item["driverName"] = b.AssignedDriver.User.FullName
			}
			response = append(response, item)
		}

		c.JSON(200, response)
	}
}

// AssignBooking attaches a cleaner and/or driver to a booking. An id that does
// not resolve to a worker is skipped silently; a worker already held by
// another booking is a 409. The availability flip uses a conditional update so
// two admins racing for the same worker cannot both win.
func AssignBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AssignBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		var cleaner *models.CleanerDetails
		if input.CleanerID != nil {
			var cd models.CleanerDetails
			if err := db.First(&cd, *input.CleanerID).Error; err == nil {
				cleaner = &cd
			}
		}
		var driver *models.DriverDetails
		if input.DriverID != nil {
			var dd models.DriverDetails
			if err := db.First(&dd, *input.DriverID).Error; err == nil {
				driver = &dd
			}
		}

		cleanerWasAvailable := cleaner != nil && cleaner.AvailabilityStatus == models.AvailabilityAvailable
		driverWasAvailable := driver != nil && driver.AvailabilityStatus == models.AvailabilityAvailable

		if err := lifecycle.AssignResources(&booking, cleaner, driver); err != nil {
			transitionErrorResponse(c, err)
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Save(&booking).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to assign booking"})
			return
		}

		// Flip availability only where this call is the one taking the worker.
		// The WHERE clause closes the window between the read above and here.
		if cleanerWasAvailable {
			result := tx.Model(&models.CleanerDetails{}).
				Where("id = ? AND availability_status = ?", cleaner.ID, models.AvailabilityAvailable).
				Update("availability_status", models.AvailabilityUnavailable)
			if result.Error != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to assign booking"})
				return
			}
			if result.RowsAffected == 0 {
				tx.Rollback()
				c.JSON(409, gin.H{"error": "Cleaner is no longer available"})
				return
			}
		}
		if driverWasAvailable {
			result := tx.Model(&models.DriverDetails{}).
				Where("id = ? AND availability_status = ?", driver.ID, models.AvailabilityAvailable).
				Update("availability_status", models.AvailabilityUnavailable)
			if result.Error != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to assign booking"})
				return
			}
			if result.RowsAffected == 0 {
				tx.Rollback()
				c.JSON(409, gin.H{"error": "Driver is no longer available"})
				return
			}
		}

		var notifications []models.Notification
		serviceDate := booking.ServiceDate.Format("Jan 02")
		if cleanerWasAvailable {
			notifications = append(notifications, models.Notification{
				UserID:  cleaner.UserID,
				Message: "New booking assigned for " + serviceDate,
			})
		}
		if driverWasAvailable {
			notifications = append(notifications, models.Notification{
				UserID:  driver.UserID,
				Message: "New pickup assigned for " + serviceDate,
			})
		}
		for i := range notifications {
			if err := tx.Create(&notifications[i]).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to assign booking"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to assign booking"})
			return
		}

		ctx := context.Background()
		if cleanerWasAvailable {
			services.SetResourceAvailability(ctx, services.ResourceCleaner, cleaner.ID, models.AvailabilityUnavailable)
		}
		if driverWasAvailable {
			services.SetResourceAvailability(ctx, services.ResourceDriver, driver.ID, models.AvailabilityUnavailable)
		}
		for _, n := range notifications {
			hub.PushNotification(n)
		}

		c.JSON(200, gin.H{
			"message":       "Booking assigned",
			"bookingStatus": booking.BookingStatus,
		})
	}
}

// ResetBookingAssignment detaches both workers and returns them to the pool.
func ResetBookingAssignment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		var cleaner *models.CleanerDetails
		if booking.AssignedCleanerID != nil {
			var cd models.CleanerDetails
			if err := db.First(&cd, *booking.AssignedCleanerID).Error; err == nil {
				cleaner = &cd
			}
		}
		var driver *models.DriverDetails
		if booking.AssignedDriverID != nil {
			var dd models.DriverDetails
			if err := db.First(&dd, *booking.AssignedDriverID).Error; err == nil {
				driver = &dd
			}
		}

		lifecycle.ResetAssignment(&booking, cleaner, driver)

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		// Save skips nil pointer fields, so clear the columns explicitly.
		if err := tx.Model(&booking).
			Select("assigned_cleaner_id", "assigned_driver_id", "booking_status").
			Updates(map[string]interface{}{
				"assigned_cleaner_id": nil,
				"assigned_driver_id":  nil,
				"booking_status":      booking.BookingStatus,
			}).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to reset assignment"})
			return
		}

		if cleaner != nil {
			if err := tx.Model(&models.CleanerDetails{}).
				Where("id = ?", cleaner.ID).
				Update("availability_status", models.AvailabilityAvailable).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to reset assignment"})
				return
			}
		}
		if driver != nil {
			if err := tx.Model(&models.DriverDetails{}).
				Where("id = ?", driver.ID).
				Update("availability_status", models.AvailabilityAvailable).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to reset assignment"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to reset assignment"})
			return
		}

		ctx := context.Background()
		if cleaner != nil {
			services.SetResourceAvailability(ctx, services.ResourceCleaner, cleaner.ID, models.AvailabilityAvailable)
		}
		if driver != nil {
			services.SetResourceAvailability(ctx, services.ResourceDriver, driver.ID, models.AvailabilityAvailable)
		}

		c.JSON(200, gin.H{
			"message":       "Assignment reset",
			"bookingStatus": booking.BookingStatus,
		})
	}
}

// UpdateBookingStatus lets an admin force a booking to any valid status.
func UpdateBookingStatus(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateBookingStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.Preload("ServiceType").First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		eff, err := transitionBooking(db, &booking, input.Status, lifecycle.Actor{Role: models.RoleAdmin})
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

// UpdateBooking edits schedule and contact details without touching the
// lifecycle.
func UpdateBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		var input struct {
			ServiceDate      *time.Time `json:"serviceDate"`
			ServiceStartTime *time.Time `json:"serviceStartTime"`
			ServiceEndTime   *time.Time `json:"serviceEndTime"`
			FullName         *string    `json:"fullName"`
			Email            *string    `json:"email"`
			Address          *string    `json:"address"`
			ZipCode          *string    `json:"zipCode"`
			City             *string    `json:"city"`
			Province         *string    `json:"province"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.ServiceDate != nil {
			booking.ServiceDate = *input.ServiceDate
		}
		if input.ServiceStartTime != nil {
			booking.ServiceStartTime = *input.ServiceStartTime
		}
		if input.ServiceEndTime != nil {
			booking.ServiceEndTime = *input.ServiceEndTime
		}
		if input.FullName != nil {
			booking.FullName = *input.FullName
		}
		if input.Email != nil {
			booking.Email = *input.Email
		}
		if input.Address != nil {
			booking.Address = *input.Address
		}
		if input.ZipCode != nil {
			booking.ZipCode = *input.ZipCode
		}
		if input.City != nil {
			booking.City = *input.City
		}
		if input.Province != nil {
			booking.Province = *input.Province
		}

		if err := db.Save(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update booking"})
			return
		}

		c.JSON(200, booking)
	}
}

// DeleteBooking removes a booking and frees any workers still held by it.
func DeleteBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if booking.AssignedCleanerID != nil {
			if err := tx.Model(&models.CleanerDetails{}).
				Where("id = ?", *booking.AssignedCleanerID).
				Update("availability_status", models.AvailabilityAvailable).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to delete booking"})
				return
			}
		}
		if booking.AssignedDriverID != nil {
			if err := tx.Model(&models.DriverDetails{}).
				Where("id = ?", *booking.AssignedDriverID).
				Update("availability_status", models.AvailabilityAvailable).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to delete booking"})
				return
			}
		}

		if err := tx.Delete(&booking).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to delete booking"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete booking"})
			return
		}

		ctx := context.Background()
		if booking.AssignedCleanerID != nil {
			services.SetResourceAvailability(ctx, services.ResourceCleaner, *booking.AssignedCleanerID, models.AvailabilityAvailable)
		}
		if booking.AssignedDriverID != nil {
			services.SetResourceAvailability(ctx, services.ResourceDriver, *booking.AssignedDriverID, models.AvailabilityAvailable)
		}

		c.JSON(200, gin.H{"message": "Booking deleted"})
	}
}

// GetBookingAnalytics aggregates counts per status plus revenue figures for
// the admin dashboard.
func GetBookingAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var statusCounts []struct {
			BookingStatus models.BookingStatus `json:"status"`
			Count         int64                `json:"count"`
		}
		if err := db.Model(&models.Booking{}).
			Select("booking_status, count(*) as count").
			Group("booking_status").
			Scan(&statusCounts).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch analytics"})
			return
		}

		var serviceBreakdown []struct {
			ServiceTypeName string  `json:"serviceTypeName"`
			Bookings        int64   `json:"bookings"`
			TotalAmount     float64 `json:"totalAmount"`
			AverageAmount   float64 `json:"averageAmount"`
		}
		if err := db.Model(&models.Booking{}).
			Select("service_types.name as service_type_name, count(*) as bookings, sum(booking_amount) as total_amount, avg(booking_amount) as average_amount").
			Joins("JOIN service_types ON service_types.id = bookings.service_type_id").
			Group("service_types.name").
			Scan(&serviceBreakdown).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch analytics"})
			return
		}

		var paidRevenue float64
		if err := db.Model(&models.Booking{}).
			Where("payment_status = ?", models.PaymentStatusPaid).
			Select("coalesce(sum(booking_amount), 0)").
			Scan(&paidRevenue).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch analytics"})
			return
		}

		c.JSON(200, gin.H{
			"statusCounts":     statusCounts,
			"serviceBreakdown": serviceBreakdown,
			"paidRevenue":      paidRevenue,
		})
	}
}

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/lifecycle"
	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
	"github.com/cleanwave/cleanwave-backend/pkg/utils"
)

type CreateBookingInput struct {
	CustomerID       string    `json:"customerId"`
	ServiceTypeID    uint      `json:"serviceTypeId" binding:"required"`
	ServiceDate      time.Time `json:"serviceDate" binding:"required"`
	ServiceStartTime time.Time `json:"serviceStartTime" binding:"required"`
	ServiceEndTime   time.Time `json:"serviceEndTime" binding:"required"`
	FullName         string    `json:"fullName" binding:"required"`
	Email            string    `json:"email" binding:"required,email"`
	Address          string    `json:"address" binding:"required"`
	ZipCode          string    `json:"zipCode"`
	City             string    `json:"city"`
	Province         string    `json:"province"`
}

// customerUserID maps a booking's customer id back to a user id for websocket
// pushes. Guest ids have no user behind them.
func customerUserID(customerID string) (uint, bool) {
	id, err := strconv.ParseUint(customerID, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// CreateBooking creates a Pending booking and returns the signed gateway
// redirect. Works with or without a session: logged-in customers get their
// user id, anonymous checkouts get a generated guest id.
func CreateBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var serviceType models.ServiceType
		if err := db.First(&serviceType, input.ServiceTypeID).Error; err != nil {
			c.JSON(400, gin.H{"error": "Unknown service type"})
			return
		}

		customerID := input.CustomerID
		if userId, exists := c.Get("userId"); exists {
			customerID = fmt.Sprint(userId)
		}
		if customerID == "" {
			customerID = "guest-" + uuid.NewString()
		}

		booking := models.Booking{
			CustomerID:       customerID,
			ServiceTypeID:    serviceType.ID,
			ServiceDate:      input.ServiceDate,
			ServiceStartTime: input.ServiceStartTime,
			ServiceEndTime:   input.ServiceEndTime,
			BookingAmount:    serviceType.Price,
			BookingStatus:    models.BookingStatusPending,
			PaymentStatus:    models.PaymentStatusPending,
			FullName:         input.FullName,
			Email:            input.Email,
			Address:          input.Address,
			ZipCode:          input.ZipCode,
			City:             input.City,
			Province:         input.Province,
		}

		if err := db.Create(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create booking"})
			return
		}

		redirectURL, err := services.BuildPaymentRedirectURL(&booking)
		if err != nil {
			log.Printf("Failed to build payment redirect for booking %d: %v", booking.ID, err)
			c.JSON(500, gin.H{"error": "Failed to initiate payment"})
			return
		}

		c.JSON(201, gin.H{
			"bookingId":   booking.ID,
			"customerId":  booking.CustomerID,
			"redirectUrl": redirectURL,
		})
	}
}

// GetBooking returns one booking. Customers only see their own; staff roles
// see everything.
func GetBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := db.Preload("ServiceType").First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if c.GetString("userRole") == string(models.RoleCustomer) {
			if booking.CustomerID != fmt.Sprint(c.GetUint("userId")) {
				c.JSON(403, gin.H{"error": "Unauthorized"})
				return
			}
		}

		c.JSON(200, booking)
	}
}

// GetUpcomingBookings lists the customer's bookings that have not finished.
func GetUpcomingBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := fmt.Sprint(c.GetUint("userId"))

		var bookings []models.Booking
		if err := db.Preload("ServiceType").
			Where("customer_id = ? AND booking_status NOT IN ?", customerID,
				[]models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled, models.BookingStatusFailed}).
			Order("service_date asc").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetBookingHistory lists the customer's finished bookings, newest first.
func GetBookingHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := fmt.Sprint(c.GetUint("userId"))

		var bookings []models.Booking
		if err := db.Preload("ServiceType").
			Where("customer_id = ? AND booking_status IN ?", customerID,
				[]models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled, models.BookingStatusFailed}).
			Order("service_date desc").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// HandlePaymentNotification processes the PayFast server-to-server webhook.
// The gateway retries on any non-200, so problems a retry cannot fix
// (unusable booking refs) are logged and acknowledged instead of re-queued.
func HandlePaymentNotification(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(400, gin.H{"error": "Failed to read notification"})
			return
		}

		if !services.VerifyNotificationSignature(rawBody, os.Getenv("PAYFAST_PASSPHRASE")) {
			log.Printf("Rejected payment notification with bad signature")
			c.JSON(400, gin.H{"error": "Invalid signature"})
			return
		}

		// Re-parse the verified body for the fields we act on.
		c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))
		paymentStatus := c.PostForm("payment_status")
		itemName := c.PostForm("item_name")

		bookingID, err := services.ParseBookingRef(itemName)
		if err != nil {
			log.Printf("Payment notification with unusable item_name: %v", err)
			c.JSON(200, gin.H{"message": "Notification acknowledged"})
			return
		}

		var booking models.Booking
		if err := db.Preload("ServiceType").First(&booking, bookingID).Error; err != nil {
			log.Printf("Payment notification for unknown booking %d", bookingID)
			c.JSON(200, gin.H{"message": "Notification acknowledged"})
			return
		}

		eff := lifecycle.ApplyPaymentOutcome(&booking, paymentStatus)

		if err := db.Save(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		if eff.SendInvoice {
			if err := utils.SendInvoiceEmail(&booking); err != nil {
				log.Printf("Failed to send invoice for booking %d: %v", booking.ID, err)
			}
		}

		if userID, ok := customerUserID(booking.CustomerID); ok {
			hub.PushBookingStatus(userID, booking.ID, booking.BookingStatus)
		}

		c.JSON(200, gin.H{"message": "Notification processed"})
	}
}

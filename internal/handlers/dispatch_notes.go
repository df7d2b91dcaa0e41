package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
)

// GetAllDispatchNotes returns every dispatch note with the driver's name and
// photo, newest first.
func GetAllDispatchNotes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var notes []struct {
			ID         uint      `json:"id"`
			BookingID  uint      `json:"bookingId"`
			Note       string    `json:"note"`
			DriverName string    `json:"driverName"`
			ImageURL   string    `json:"imageUrl"`
			CreatedAt  time.Time `json:"createdAt"`
		}

		if err := db.Model(&models.DispatchNote{}).
			Select("dispatch_notes.id, dispatch_notes.booking_id, dispatch_notes.note, users.full_name as driver_name, driver_details.image_url, dispatch_notes.created_at").
			Joins("JOIN driver_details ON driver_details.id = dispatch_notes.driver_id").
			Joins("JOIN users ON users.id = driver_details.user_id").
			Order("dispatch_notes.created_at desc").
			Scan(&notes).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch dispatch notes"})
			return
		}

		for i := range notes {
			notes[i].ImageURL = services.GetImageURL(notes[i].ImageURL)
		}

		c.JSON(200, notes)
	}
}

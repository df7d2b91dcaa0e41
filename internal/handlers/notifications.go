package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

// GetNotifications lists the user's notifications, newest first.
func GetNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var notifications []models.Notification
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&notifications).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}

		c.JSON(200, notifications)
	}
}

// MarkNotificationRead flags one of the user's notifications as read.
func MarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var notification models.Notification
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).
			First(&notification).Error; err != nil {
			c.JSON(404, gin.H{"error": "Notification not found"})
			return
		}

		if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update notification"})
			return
		}

		c.JSON(200, gin.H{"message": "Notification marked as read"})
	}
}

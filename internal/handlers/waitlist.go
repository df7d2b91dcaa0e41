package handlers

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/pkg/utils"
)

// SubmitWaitlistEmail records a shop-launch signup and sends a confirmation.
func SubmitWaitlistEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		var existing models.WaitlistEntry
		if err := db.Where("lower(email) = ?", email).First(&existing).Error; err == nil {
			c.JSON(409, gin.H{"error": "Email is already on the waitlist"})
			return
		}

		entry := models.WaitlistEntry{Email: email}
		if err := db.Create(&entry).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to join waitlist"})
			return
		}

		if err := utils.SendWaitlistConfirmationEmail(email); err != nil {
			log.Printf("Failed to send waitlist confirmation to %s: %v", email, err)
		}

		c.JSON(201, gin.H{"message": "Added to waitlist"})
	}
}

// GetWaitlist lists every signup for the admin dashboard.
func GetWaitlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []models.WaitlistEntry
		if err := db.Order("created_at desc").Find(&entries).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch waitlist"})
			return
		}

		c.JSON(200, entries)
	}
}

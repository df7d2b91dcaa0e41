package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

// GetServiceTypes lists the bookable services. Public, the booking form needs
// it before any session exists.
func GetServiceTypes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var serviceTypes []models.ServiceType
		if err := db.Find(&serviceTypes).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch service types"})
			return
		}

		c.JSON(200, serviceTypes)
	}
}

// CreateServiceType adds a bookable service to the catalog.
func CreateServiceType(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name        string  `json:"name" binding:"required"`
			Description string  `json:"description"`
			Price       float64 `json:"price" binding:"required"`
			ImageURL    string  `json:"imageUrl"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		serviceType := models.ServiceType{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			ImageURL:    input.ImageURL,
		}
		if err := db.Create(&serviceType).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create service type"})
			return
		}

		c.JSON(201, serviceType)
	}
}

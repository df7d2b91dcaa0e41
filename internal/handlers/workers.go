package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
)

type CreateWorkerInput struct {
	FullName      string `json:"fullName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	Phone         string `json:"phone"`
	ServiceTypeID uint   `json:"serviceTypeId"`
	LicenseNumber string `json:"licenseNumber"`
	VehicleType   string `json:"vehicleType"`
}

// GetCleaners lists every cleaner with their user and specialty for the admin
// assignment screen.
func GetCleaners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cleaners []struct {
			ID                 uint                      `json:"id"`
			FullName           string                    `json:"fullName"`
			Email              string                    `json:"email"`
			PhoneNumber        string                    `json:"phoneNumber"`
			ServiceTypeName    string                    `json:"serviceTypeName"`
			AvailabilityStatus models.AvailabilityStatus `json:"availabilityStatus"`
			ImageURL           string                    `json:"imageUrl"`
		}

		if err := db.Model(&models.CleanerDetails{}).
			Select("cleaner_details.id, users.full_name, users.email, users.phone_number, service_types.name as service_type_name, cleaner_details.availability_status, cleaner_details.image_url").
			Joins("JOIN users ON users.id = cleaner_details.user_id").
			Joins("LEFT JOIN service_types ON service_types.id = cleaner_details.service_type_id").
			Scan(&cleaners).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch cleaners"})
			return
		}

		for i := range cleaners {
			cleaners[i].ImageURL = services.GetImageURL(cleaners[i].ImageURL)
		}

		c.JSON(200, cleaners)
	}
}

// GetDrivers lists every driver with their user and vehicle details.
func GetDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var drivers []struct {
			ID                 uint                      `json:"id"`
			FullName           string                    `json:"fullName"`
			Email              string                    `json:"email"`
			PhoneNumber        string                    `json:"phoneNumber"`
			LicenseNumber      string                    `json:"licenseNumber"`
			VehicleType        string                    `json:"vehicleType"`
			AvailabilityStatus models.AvailabilityStatus `json:"availabilityStatus"`
			ImageURL           string                    `json:"imageUrl"`
		}

		if err := db.Model(&models.DriverDetails{}).
			Select("driver_details.id, users.full_name, users.email, users.phone_number, driver_details.license_number, driver_details.vehicle_type, driver_details.availability_status, driver_details.image_url").
			Joins("JOIN users ON users.id = driver_details.user_id").
			Scan(&drivers).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch drivers"})
			return
		}

		for i := range drivers {
			drivers[i].ImageURL = services.GetImageURL(drivers[i].ImageURL)
		}

		c.JSON(200, drivers)
	}
}

// CreateCleaner provisions a cleaner account plus its details row in one
// transaction.
func CreateCleaner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateWorkerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		user := models.User{
			FullName:     input.FullName,
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
			PhoneNumber:  input.Phone,
			Role:         models.RoleCleaner,
		}
		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create cleaner"})
			return
		}

		details := models.CleanerDetails{
			UserID:             user.ID,
			ServiceTypeID:      input.ServiceTypeID,
			AvailabilityStatus: models.AvailabilityAvailable,
		}
		if err := tx.Create(&details).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create cleaner"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create cleaner"})
			return
		}

		c.JSON(201, gin.H{
			"message":   "Cleaner created successfully",
			"cleanerId": details.ID,
			"userId":    user.ID,
		})
	}
}

// CreateDriver provisions a driver account plus its details row in one
// transaction.
func CreateDriver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateWorkerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		user := models.User{
			FullName:     input.FullName,
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
			PhoneNumber:  input.Phone,
			Role:         models.RoleDriver,
		}
		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create driver"})
			return
		}

		details := models.DriverDetails{
			UserID:             user.ID,
			LicenseNumber:      input.LicenseNumber,
			VehicleType:        input.VehicleType,
			AvailabilityStatus: models.AvailabilityAvailable,
		}
		if err := tx.Create(&details).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create driver"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create driver"})
			return
		}

		c.JSON(201, gin.H{
			"message":  "Driver created successfully",
			"driverId": details.ID,
			"userId":   user.ID,
		})
	}
}

// UploadCleanerImage stores a profile photo for a cleaner.
func UploadCleanerImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cleaner models.CleanerDetails
		if err := db.First(&cleaner, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Cleaner not found"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "No image file provided"})
			return
		}

		imagePath, err := services.UploadImage(file, services.CleanerImageFolder)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload image"})
			return
		}

		if cleaner.ImageURL != "" {
			if err := services.DeleteImage(services.GetImageURL(cleaner.ImageURL)); err != nil {
				log.Printf("Failed to delete old cleaner image %s: %v", cleaner.ImageURL, err)
			}
		}

		if err := db.Model(&cleaner).Update("image_url", imagePath).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save image"})
			return
		}

		c.JSON(200, gin.H{"imageUrl": services.GetImageURL(imagePath)})
	}
}

// UploadDriverImage stores a profile photo for a driver.
func UploadDriverImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var driver models.DriverDetails
		if err := db.First(&driver, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver not found"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "No image file provided"})
			return
		}

		imagePath, err := services.UploadImage(file, services.DriverImageFolder)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload image"})
			return
		}

		if driver.ImageURL != "" {
			if err := services.DeleteImage(services.GetImageURL(driver.ImageURL)); err != nil {
				log.Printf("Failed to delete old driver image %s: %v", driver.ImageURL, err)
			}
		}

		if err := db.Model(&driver).Update("image_url", imagePath).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save image"})
			return
		}

		c.JSON(200, gin.H{"imageUrl": services.GetImageURL(imagePath)})
	}
}

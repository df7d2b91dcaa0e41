package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/lifecycle"
	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/internal/services"
)

// transitionBooking validates the move through the lifecycle table and
// persists booking plus any resource releases in one transaction. Callers
// send emails after this returns; a mail failure must never undo the
// transition.
func transitionBooking(db *gorm.DB, booking *models.Booking, to models.BookingStatus, actor lifecycle.Actor) (lifecycle.Effects, error) {
	// Capture assignment ids before the transition rewrites anything.
	cleanerID := booking.AssignedCleanerID
	driverID := booking.AssignedDriverID

	eff, err := lifecycle.Transition(booking, to, actor)
	if err != nil {
		return lifecycle.Effects{}, err
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Save(booking).Error; err != nil {
		tx.Rollback()
		return lifecycle.Effects{}, err
	}

	if eff.ReleaseCleaner && cleanerID != nil {
		if err := tx.Model(&models.CleanerDetails{}).
			Where("id = ?", *cleanerID).
			Update("availability_status", models.AvailabilityAvailable).Error; err != nil {
			tx.Rollback()
			return lifecycle.Effects{}, err
		}
	}
	if eff.ReleaseDriver && driverID != nil {
		if err := tx.Model(&models.DriverDetails{}).
			Where("id = ?", *driverID).
			Update("availability_status", models.AvailabilityAvailable).Error; err != nil {
			tx.Rollback()
			return lifecycle.Effects{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return lifecycle.Effects{}, err
	}

	// Mirror releases into the cache after commit, best effort.
	ctx := context.Background()
	if eff.ReleaseCleaner && cleanerID != nil {
		services.SetResourceAvailability(ctx, services.ResourceCleaner, *cleanerID, models.AvailabilityAvailable)
	}
	if eff.ReleaseDriver && driverID != nil {
		services.SetResourceAvailability(ctx, services.ResourceDriver, *driverID, models.AvailabilityAvailable)
	}

	return eff, nil
}

func transitionErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrUnknownStatus), errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(400, gin.H{"error": "Invalid status"})
	case errors.Is(err, lifecycle.ErrNotAssigned):
		c.JSON(403, gin.H{"error": "Unauthorized"})
	case errors.Is(err, lifecycle.ErrResourceUnavailable):
		c.JSON(409, gin.H{"error": "Resource is not available"})
	default:
		c.JSON(500, gin.H{"error": "Failed to update booking status"})
	}
}

package models

import "gorm.io/gorm"

// DispatchNote is an append-only log entry a driver leaves against a booking.
type DispatchNote struct {
	gorm.Model
	BookingID uint   `json:"bookingId" gorm:"not null;index"`
	DriverID  uint   `json:"driverId" gorm:"not null"`
	Note      string `json:"note" gorm:"not null"`
}

package models

import "gorm.io/gorm"

type DriverDetails struct {
	gorm.Model
	UserID             uint               `json:"userId" gorm:"not null;index"`
	User               User               `json:"user"`
	LicenseNumber      string             `json:"licenseNumber"`
	VehicleType        string             `json:"vehicleType"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus" gorm:"not null;default:'Available'"`
	ImageURL           string             `json:"imageUrl"`
}

func (DriverDetails) TableName() string {
	return "driver_details"
}

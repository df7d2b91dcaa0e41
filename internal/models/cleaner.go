package models

import "gorm.io/gorm"

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "Available"
	AvailabilityUnavailable AvailabilityStatus = "Unavailable"
)

type CleanerDetails struct {
	gorm.Model
	UserID             uint               `json:"userId" gorm:"not null;index"`
	User               User               `json:"user"`
	ServiceTypeID      uint               `json:"serviceTypeId"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus" gorm:"not null;default:'Available'"`
	ImageURL           string             `json:"imageUrl"`
}

func (CleanerDetails) TableName() string {
	return "cleaner_details"
}

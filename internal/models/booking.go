package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusAssigned  BookingStatus = "Assigned"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusEnRoute   BookingStatus = "EnRoute"
	BookingStatusArrived   BookingStatus = "Arrived"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusFailed    BookingStatus = "Failed"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// ValidBookingStatus reports whether s belongs to the closed status set.
// Free-text statuses are rejected everywhere.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusAssigned, BookingStatusConfirmed,
		BookingStatusEnRoute, BookingStatusArrived, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusFailed:
		return true
	}
	return false
}

type Booking struct {
	gorm.Model
	// CustomerID is a string so guest checkouts can carry a generated id.
	CustomerID        string          `json:"customerId" gorm:"not null;index"`
	AssignedCleanerID *uint           `json:"assignedCleanerId"`
	AssignedCleaner   *CleanerDetails `json:"assignedCleaner,omitempty" gorm:"foreignKey:AssignedCleanerID"`
	AssignedDriverID  *uint           `json:"assignedDriverId"`
	AssignedDriver    *DriverDetails  `json:"assignedDriver,omitempty" gorm:"foreignKey:AssignedDriverID"`
	ServiceTypeID     uint            `json:"serviceTypeId" gorm:"not null"`
	ServiceType       ServiceType     `json:"serviceType"`
	ServiceDate       time.Time       `json:"serviceDate" gorm:"not null"`
	ServiceStartTime  time.Time       `json:"serviceStartTime" gorm:"not null"`
	ServiceEndTime    time.Time       `json:"serviceEndTime" gorm:"not null"`
	BookingAmount     float64         `json:"bookingAmount" gorm:"not null"`
	BookingStatus     BookingStatus   `json:"bookingStatus" gorm:"not null;default:'Pending'"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus" gorm:"not null;default:'Pending'"`

	// Contact snapshot captured at creation time. Deliberately not a join so
	// historical invoices survive later profile edits.
	FullName string `json:"fullName" gorm:"not null"`
	Email    string `json:"email" gorm:"not null"`
	Address  string `json:"address" gorm:"not null"`
	ZipCode  string `json:"zipCode"`
	City     string `json:"city"`
	Province string `json:"province"`
}

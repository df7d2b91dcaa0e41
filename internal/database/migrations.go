package database

import (
	"gorm.io/gorm"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.ServiceType{},
		&models.CleanerDetails{},
		&models.DriverDetails{},
		&models.Booking{},
		&models.Notification{},
		&models.DispatchNote{},
		&models.WaitlistEntry{},
	)
	if err != nil {
		return err
	}

	// Closed status sets are also enforced at the database level so nothing
	// bypassing the application can write free-text statuses.
	db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
	db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('customer', 'cleaner', 'driver', 'admin'))`)

	db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_booking_status_check`)
	db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_booking_status_check CHECK (booking_status IN ('Pending', 'Assigned', 'Confirmed', 'EnRoute', 'Arrived', 'Completed', 'Cancelled', 'Failed'))`)

	db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_payment_status_check`)
	db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_payment_status_check CHECK (payment_status IN ('Pending', 'Paid', 'Failed'))`)

	for _, table := range []string{"cleaner_details", "driver_details"} {
		db.Exec(`ALTER TABLE ` + table + ` DROP CONSTRAINT IF EXISTS ` + table + `_availability_check`)
		db.Exec(`ALTER TABLE ` + table + ` ADD CONSTRAINT ` + table + `_availability_check CHECK (availability_status IN ('Available', 'Unavailable'))`)
	}

	return nil
}

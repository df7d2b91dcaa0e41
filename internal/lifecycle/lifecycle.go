package lifecycle

import (
	"errors"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

// Errors surfaced to handlers. ErrUnknownStatus and ErrInvalidTransition map
// to 400, ErrNotAssigned to 403, ErrResourceUnavailable to 409.
var (
	ErrUnknownStatus       = errors.New("unknown booking status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrNotAssigned         = errors.New("booking is not assigned to this actor")
	ErrResourceUnavailable = errors.New("resource is not available")
)

// Actor identifies who is requesting a transition. CleanerID and DriverID are
// the acting user's CleanerDetails/DriverDetails row ids, set only for the
// matching role.
type Actor struct {
	Role      models.UserRole
	CleanerID uint
	DriverID  uint
}

// Effects describes the side work a committed transition owes. Resource
// releases happen in the same transaction; mails go out after commit and are
// never allowed to roll the transition back.
type Effects struct {
	ReleaseCleaner      bool
	ReleaseDriver       bool
	SendServiceComplete bool
	SendDriverStatus    bool
	SendInvoice         bool
}

// Terminal reports whether a status ends the booking's life. Entering any
// terminal status releases the assigned resources.
func Terminal(s models.BookingStatus) bool {
	switch s {
	case models.BookingStatusCompleted, models.BookingStatusCancelled, models.BookingStatusFailed:
		return true
	}
	return false
}

// transitions is the forward table applied to non-admin actors. Admins may
// set any status in the closed set. A status can always be re-applied to
// itself, which is what makes terminal releases idempotent.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusPending:   {models.BookingStatusAssigned, models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusAssigned:  {models.BookingStatusConfirmed, models.BookingStatusEnRoute, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusAssigned, models.BookingStatusEnRoute, models.BookingStatusCancelled},
	models.BookingStatusEnRoute:   {models.BookingStatusArrived, models.BookingStatusCancelled},
	models.BookingStatusArrived:   {models.BookingStatusCompleted, models.BookingStatusCancelled},
	models.BookingStatusCompleted: {},
	models.BookingStatusCancelled: {},
	models.BookingStatusFailed:    {},
}

func canMove(from, to models.BookingStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change for the given actor and applies it to
// the in-memory booking. Cleaners and drivers may only move their own
// assigned booking; drivers are further restricted to EnRoute and Arrived.
func Transition(b *models.Booking, to models.BookingStatus, actor Actor) (Effects, error) {
	if !models.ValidBookingStatus(to) {
		return Effects{}, ErrUnknownStatus
	}

	switch actor.Role {
	case models.RoleAdmin:
		// Admins bypass the table, not the closed set.
	case models.RoleCleaner:
		if b.AssignedCleanerID == nil || *b.AssignedCleanerID != actor.CleanerID {
			return Effects{}, ErrNotAssigned
		}
		if !canMove(b.BookingStatus, to) {
			return Effects{}, ErrInvalidTransition
		}
	case models.RoleDriver:
		if b.AssignedDriverID == nil || *b.AssignedDriverID != actor.DriverID {
			return Effects{}, ErrNotAssigned
		}
		if to != models.BookingStatusEnRoute && to != models.BookingStatusArrived {
			return Effects{}, ErrInvalidTransition
		}
		if !canMove(b.BookingStatus, to) {
			return Effects{}, ErrInvalidTransition
		}
	default:
		return Effects{}, ErrNotAssigned
	}

	var eff Effects
	if Terminal(to) {
		eff.ReleaseCleaner = b.AssignedCleanerID != nil
		eff.ReleaseDriver = b.AssignedDriverID != nil
	}
	if to == models.BookingStatusCompleted {
		eff.SendServiceComplete = true
	}
	if actor.Role == models.RoleDriver {
		eff.SendDriverStatus = true
	}

	b.BookingStatus = to
	return eff, nil
}

// AssignResources records cleaner/driver assignments on the booking and flips
// each resource to Unavailable. A nil resource means the requested id did not
// resolve and is skipped without failing the call. A resource that is already
// Unavailable on some other booking is a hard conflict; re-assigning the same
// resource to the same booking is a no-op.
func AssignResources(b *models.Booking, cleaner *models.CleanerDetails, driver *models.DriverDetails) error {
	if cleaner != nil {
		held := b.AssignedCleanerID != nil && *b.AssignedCleanerID == cleaner.ID
		if cleaner.AvailabilityStatus != models.AvailabilityAvailable && !held {
			return ErrResourceUnavailable
		}
	}
	if driver != nil {
		held := b.AssignedDriverID != nil && *b.AssignedDriverID == driver.ID
		if driver.AvailabilityStatus != models.AvailabilityAvailable && !held {
			return ErrResourceUnavailable
		}
	}

	if cleaner != nil {
		b.AssignedCleanerID = &cleaner.ID
		cleaner.AvailabilityStatus = models.AvailabilityUnavailable
	}
	if driver != nil {
		b.AssignedDriverID = &driver.ID
		driver.AvailabilityStatus = models.AvailabilityUnavailable
	}

	if b.AssignedCleanerID != nil && b.AssignedDriverID != nil {
		b.BookingStatus = models.BookingStatusAssigned
	}
	return nil
}

// ResetAssignment clears both assignments and returns the resources to
// Available. The booking falls back to Confirmed when already paid, Pending
// otherwise. Safe to call repeatedly.
func ResetAssignment(b *models.Booking, cleaner *models.CleanerDetails, driver *models.DriverDetails) {
	if cleaner != nil {
		cleaner.AvailabilityStatus = models.AvailabilityAvailable
	}
	if driver != nil {
		driver.AvailabilityStatus = models.AvailabilityAvailable
	}
	b.AssignedCleanerID = nil
	b.AssignedDriverID = nil

	if b.PaymentStatus == models.PaymentStatusPaid {
		b.BookingStatus = models.BookingStatusConfirmed
	} else {
		b.BookingStatus = models.BookingStatusPending
	}
}

// ApplyPaymentOutcome folds the gateway's webhook verdict into the booking.
// COMPLETE marks the booking Paid and Confirmed and asks for exactly one
// invoice send; any other verdict marks the payment Failed. A booking that is
// already Paid is never touched again, so replayed or late webhooks cannot
// revert a settled payment.
func ApplyPaymentOutcome(b *models.Booking, gatewayStatus string) Effects {
	if b.PaymentStatus == models.PaymentStatusPaid {
		return Effects{}
	}
	if gatewayStatus == "COMPLETE" {
		b.PaymentStatus = models.PaymentStatusPaid
		b.BookingStatus = models.BookingStatusConfirmed
		return Effects{SendInvoice: true}
	}
	b.PaymentStatus = models.PaymentStatusFailed
	return Effects{}
}

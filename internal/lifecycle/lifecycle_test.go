package lifecycle

import (
	"errors"
	"testing"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

func newBooking() *models.Booking {
	b := &models.Booking{
		CustomerID:    "cust-1",
		ServiceTypeID: 1,
		BookingAmount: 500,
		BookingStatus: models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	return b
}

func newCleaner(id uint) *models.CleanerDetails {
	c := &models.CleanerDetails{UserID: 10, AvailabilityStatus: models.AvailabilityAvailable}
	c.ID = id
	return c
}

func newDriver(id uint) *models.DriverDetails {
	d := &models.DriverDetails{UserID: 20, AvailabilityStatus: models.AvailabilityAvailable}
	d.ID = id
	return d
}

func TestAssignResources_BothResources(t *testing.T) {
	b := newBooking()
	cleaner := newCleaner(1)
	driver := newDriver(2)

	if err := AssignResources(b, cleaner, driver); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}

	if b.BookingStatus != models.BookingStatusAssigned {
		t.Errorf("status = %q, want %q", b.BookingStatus, models.BookingStatusAssigned)
	}
	if b.AssignedCleanerID == nil || *b.AssignedCleanerID != 1 {
		t.Errorf("AssignedCleanerID = %v, want 1", b.AssignedCleanerID)
	}
	if b.AssignedDriverID == nil || *b.AssignedDriverID != 2 {
		t.Errorf("AssignedDriverID = %v, want 2", b.AssignedDriverID)
	}
	if cleaner.AvailabilityStatus != models.AvailabilityUnavailable {
		t.Errorf("cleaner availability = %q, want Unavailable", cleaner.AvailabilityStatus)
	}
	if driver.AvailabilityStatus != models.AvailabilityUnavailable {
		t.Errorf("driver availability = %q, want Unavailable", driver.AvailabilityStatus)
	}
}

func TestAssignResources_CleanerOnlyKeepsStatus(t *testing.T) {
	b := newBooking()
	cleaner := newCleaner(1)

	if err := AssignResources(b, cleaner, nil); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}
	if b.BookingStatus != models.BookingStatusPending {
		t.Errorf("status = %q, want Pending until both resources assigned", b.BookingStatus)
	}
	if cleaner.AvailabilityStatus != models.AvailabilityUnavailable {
		t.Errorf("cleaner availability = %q, want Unavailable", cleaner.AvailabilityStatus)
	}
}

func TestAssignResources_UnavailableResourceConflicts(t *testing.T) {
	b := newBooking()
	cleaner := newCleaner(1)
	cleaner.AvailabilityStatus = models.AvailabilityUnavailable

	err := AssignResources(b, cleaner, nil)
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("err = %v, want ErrResourceUnavailable", err)
	}
	if b.AssignedCleanerID != nil {
		t.Error("booking must be untouched on conflict")
	}
}

func TestAssignResources_ReassignSameResourceIsNoop(t *testing.T) {
	b := newBooking()
	cleaner := newCleaner(1)
	driver := newDriver(2)
	if err := AssignResources(b, cleaner, driver); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if err := AssignResources(b, cleaner, driver); err != nil {
		t.Fatalf("reassign of held resources should succeed, got %v", err)
	}
}

func TestResetAssignment_InverseOfAssign(t *testing.T) {
	b := newBooking()
	cleaner := newCleaner(1)
	driver := newDriver(2)
	if err := AssignResources(b, cleaner, driver); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}

	// Calling twice must leave resources Available both times.
	for i := 0; i < 2; i++ {
		ResetAssignment(b, cleaner, driver)
		if cleaner.AvailabilityStatus != models.AvailabilityAvailable {
			t.Errorf("pass %d: cleaner availability = %q, want Available", i, cleaner.AvailabilityStatus)
		}
		if driver.AvailabilityStatus != models.AvailabilityAvailable {
			t.Errorf("pass %d: driver availability = %q, want Available", i, driver.AvailabilityStatus)
		}
		if b.AssignedCleanerID != nil || b.AssignedDriverID != nil {
			t.Errorf("pass %d: assignments not cleared", i)
		}
	}
	if b.BookingStatus != models.BookingStatusPending {
		t.Errorf("unpaid reset status = %q, want Pending", b.BookingStatus)
	}

	b.PaymentStatus = models.PaymentStatusPaid
	ResetAssignment(b, nil, nil)
	if b.BookingStatus != models.BookingStatusConfirmed {
		t.Errorf("paid reset status = %q, want Confirmed", b.BookingStatus)
	}
}

func TestTransition_RejectsUnknownStatus(t *testing.T) {
	b := newBooking()
	_, err := Transition(b, models.BookingStatus("Scheduled"), Actor{Role: models.RoleAdmin})
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus", err)
	}
}

func TestTransition_DriverRestrictedToEnRouteArrived(t *testing.T) {
	driverID := uint(2)
	actor := Actor{Role: models.RoleDriver, DriverID: driverID}

	for _, status := range []models.BookingStatus{
		models.BookingStatusCompleted,
		models.BookingStatusCancelled,
		models.BookingStatusConfirmed,
		models.BookingStatusPending,
	} {
		b := newBooking()
		b.BookingStatus = models.BookingStatusAssigned
		b.AssignedDriverID = &driverID
		if _, err := Transition(b, status, actor); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("driver -> %q: err = %v, want ErrInvalidTransition", status, err)
		}
	}

	b := newBooking()
	b.BookingStatus = models.BookingStatusAssigned
	b.AssignedDriverID = &driverID
	eff, err := Transition(b, models.BookingStatusEnRoute, actor)
	if err != nil {
		t.Fatalf("driver -> EnRoute: %v", err)
	}
	if !eff.SendDriverStatus {
		t.Error("driver transition must trigger the driver status email")
	}
	if _, err := Transition(b, models.BookingStatusArrived, actor); err != nil {
		t.Fatalf("driver -> Arrived: %v", err)
	}
}

func TestTransition_DriverMustOwnBooking(t *testing.T) {
	otherDriver := uint(99)
	b := newBooking()
	b.BookingStatus = models.BookingStatusAssigned
	b.AssignedDriverID = &otherDriver

	_, err := Transition(b, models.BookingStatusEnRoute, Actor{Role: models.RoleDriver, DriverID: 2})
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("err = %v, want ErrNotAssigned", err)
	}
}

func TestTransition_CleanerMustOwnBooking(t *testing.T) {
	b := newBooking()
	b.BookingStatus = models.BookingStatusArrived

	_, err := Transition(b, models.BookingStatusCompleted, Actor{Role: models.RoleCleaner, CleanerID: 1})
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("unassigned cleaner: err = %v, want ErrNotAssigned", err)
	}
}

func TestTransition_AdminMaySetAnyStatus(t *testing.T) {
	for _, status := range []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusAssigned,
		models.BookingStatusConfirmed,
		models.BookingStatusEnRoute,
		models.BookingStatusArrived,
		models.BookingStatusCompleted,
		models.BookingStatusCancelled,
		models.BookingStatusFailed,
	} {
		b := newBooking()
		b.BookingStatus = models.BookingStatusCompleted // terminal: worst case for table rules
		if _, err := Transition(b, status, Actor{Role: models.RoleAdmin}); err != nil {
			t.Errorf("admin -> %q: %v", status, err)
		}
	}
}

func TestTransition_CompletedReleasesResourcesIdempotently(t *testing.T) {
	cleanerID, driverID := uint(1), uint(2)
	b := newBooking()
	b.BookingStatus = models.BookingStatusArrived
	b.AssignedCleanerID = &cleanerID
	b.AssignedDriverID = &driverID

	actor := Actor{Role: models.RoleCleaner, CleanerID: cleanerID}
	for i := 0; i < 2; i++ {
		eff, err := Transition(b, models.BookingStatusCompleted, actor)
		if err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if !eff.ReleaseCleaner || !eff.ReleaseDriver {
			t.Errorf("pass %d: release flags = %+v, want both set", i, eff)
		}
		if !eff.SendServiceComplete {
			t.Errorf("pass %d: service complete email not requested", i)
		}
	}
}

func TestTransition_CancelledReleasesResources(t *testing.T) {
	cleanerID := uint(1)
	b := newBooking()
	b.BookingStatus = models.BookingStatusAssigned
	b.AssignedCleanerID = &cleanerID

	eff, err := Transition(b, models.BookingStatusCancelled, Actor{Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if !eff.ReleaseCleaner {
		t.Error("cancelling must release the assigned cleaner")
	}
	if eff.ReleaseDriver {
		t.Error("no driver assigned, nothing to release")
	}
	if eff.SendServiceComplete {
		t.Error("cancellation must not send the service complete email")
	}
}

func TestApplyPaymentOutcome(t *testing.T) {
	b := newBooking()

	eff := ApplyPaymentOutcome(b, "COMPLETE")
	if !eff.SendInvoice {
		t.Error("COMPLETE must request exactly one invoice send")
	}
	if b.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment = %q, want Paid", b.PaymentStatus)
	}
	if b.BookingStatus != models.BookingStatusConfirmed {
		t.Errorf("status = %q, want Confirmed", b.BookingStatus)
	}

	// Replays never double-send or revert a settled payment.
	if eff := ApplyPaymentOutcome(b, "COMPLETE"); eff.SendInvoice {
		t.Error("replayed COMPLETE must not send a second invoice")
	}
	if eff := ApplyPaymentOutcome(b, "CANCELLED"); eff.SendInvoice || b.PaymentStatus != models.PaymentStatusPaid {
		t.Error("late failure verdict must not revert a paid booking")
	}

	failed := newBooking()
	if eff := ApplyPaymentOutcome(failed, "CANCELLED"); eff.SendInvoice {
		t.Error("failed payment must not send an invoice")
	}
	if failed.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("payment = %q, want Failed", failed.PaymentStatus)
	}
	if failed.BookingStatus != models.BookingStatusPending {
		t.Errorf("failed payment must not advance booking status, got %q", failed.BookingStatus)
	}
}

// Full lifecycle walk: create, assign, pay, drive, complete.
func TestLifecycle_EndToEnd(t *testing.T) {
	b := newBooking()
	cleaner := newCleaner(1)
	driver := newDriver(2)

	if err := AssignResources(b, cleaner, driver); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if b.BookingStatus != models.BookingStatusAssigned {
		t.Fatalf("after assign: status = %q", b.BookingStatus)
	}

	if eff := ApplyPaymentOutcome(b, "COMPLETE"); !eff.SendInvoice {
		t.Fatal("payment must produce an invoice")
	}
	if b.BookingStatus != models.BookingStatusConfirmed || b.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("after payment: status = %q payment = %q", b.BookingStatus, b.PaymentStatus)
	}

	if _, err := Transition(b, models.BookingStatusEnRoute, Actor{Role: models.RoleDriver, DriverID: driver.ID}); err != nil {
		t.Fatalf("en route: %v", err)
	}
	if _, err := Transition(b, models.BookingStatusArrived, Actor{Role: models.RoleDriver, DriverID: driver.ID}); err != nil {
		t.Fatalf("arrived: %v", err)
	}

	eff, err := Transition(b, models.BookingStatusCompleted, Actor{Role: models.RoleCleaner, CleanerID: cleaner.ID})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !eff.ReleaseCleaner || !eff.ReleaseDriver {
		t.Fatal("completion must release both resources")
	}
	if b.BookingStatus != models.BookingStatusCompleted {
		t.Fatalf("final status = %q", b.BookingStatus)
	}
}

package models

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	u := User{Password: "hunter2-long-enough"}
	if err := u.HashPassword(); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == u.Password {
		t.Fatal("expected a bcrypt hash distinct from the plaintext")
	}

	if err := u.CheckPassword("hunter2-long-enough"); err != nil {
		t.Fatalf("CheckPassword rejected correct password: %v", err)
	}
	if err := u.CheckPassword("wrong"); err == nil {
		t.Fatal("CheckPassword accepted wrong password")
	}
}

func TestHashPasswordNoopWhenEmpty(t *testing.T) {
	u := User{}
	if err := u.HashPassword(); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatal("expected no hash for empty password")
	}
}

func TestValidBookingStatus(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusAssigned, BookingStatusConfirmed,
		BookingStatusEnRoute, BookingStatusArrived, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusFailed,
	} {
		if !ValidBookingStatus(s) {
			t.Errorf("status %q should be valid", s)
		}
	}

	for _, s := range []BookingStatus{"", "pending", "Done", "InProgress"} {
		if ValidBookingStatus(s) {
			t.Errorf("status %q should be rejected", s)
		}
	}
}

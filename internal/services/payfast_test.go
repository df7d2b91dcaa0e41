package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

func TestParseBookingRef(t *testing.T) {
	cases := []struct {
		itemName string
		want     uint
		wantErr  bool
	}{
		{"Booking #42", 42, false},
		{"Booking #1", 1, false},
		{"Booking # 7", 7, false},
		{"Booking 42", 0, true},
		{"Booking #", 0, true},
		{"Booking #abc", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseBookingRef(tc.itemName)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBookingRef(%q) = %d, want error", tc.itemName, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBookingRef(%q): %v", tc.itemName, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBookingRef(%q) = %d, want %d", tc.itemName, got, tc.want)
		}
	}
}

func TestBookingRefRoundTrip(t *testing.T) {
	ref := BookingRef(314)
	id, err := ParseBookingRef(ref)
	if err != nil {
		t.Fatalf("ParseBookingRef(%q): %v", ref, err)
	}
	if id != 314 {
		t.Fatalf("round trip = %d, want 314", id)
	}
}

func TestVerifyNotificationSignature(t *testing.T) {
	const passphrase = "s3cret-phrase"

	body := "m_payment_id=77&payment_status=COMPLETE&item_name=" + url.QueryEscape("Booking #77") + "&amount_gross=500.00"
	signed := body + "&signature=" + signPayload(body, passphrase)

	if !VerifyNotificationSignature([]byte(signed), passphrase) {
		t.Fatal("valid signature rejected")
	}
	if VerifyNotificationSignature([]byte(signed), "other-phrase") {
		t.Error("signature accepted with the wrong passphrase")
	}

	tampered := strings.Replace(signed, "COMPLETE", "CANCELLED", 1)
	if VerifyNotificationSignature([]byte(tampered), passphrase) {
		t.Error("tampered payload accepted")
	}

	if VerifyNotificationSignature([]byte(body), passphrase) {
		t.Error("unsigned payload accepted")
	}
}

func TestVerifyNotificationSignature_FieldOrderMatters(t *testing.T) {
	const passphrase = "s3cret-phrase"

	body := "payment_status=COMPLETE&item_name=" + url.QueryEscape("Booking #9")
	signed := body + "&signature=" + signPayload(body, passphrase)

	reordered := "item_name=" + url.QueryEscape("Booking #9") + "&payment_status=COMPLETE&signature=" + signPayload(body, passphrase)
	if VerifyNotificationSignature([]byte(reordered), passphrase) {
		t.Error("signature must be computed over the received field order")
	}
	if !VerifyNotificationSignature([]byte(signed), passphrase) {
		t.Error("original order rejected")
	}
}

func TestBuildPaymentRedirectURL(t *testing.T) {
	t.Setenv("PAYFAST_MERCHANT_ID", "10000100")
	t.Setenv("PAYFAST_MERCHANT_KEY", "46f0cd694581a")
	t.Setenv("PAYFAST_RETURN_URL", "https://example.com/payment-success")
	t.Setenv("PAYFAST_CANCEL_URL", "https://example.com/payment-cancelled")
	t.Setenv("PAYFAST_NOTIFY_URL", "https://example.com/api/bookings/payfast/notify")
	t.Setenv("PAYFAST_PASSPHRASE", "s3cret-phrase")
	t.Setenv("PAYFAST_PROCESS_URL", "")

	booking := &models.Booking{
		BookingAmount: 500,
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
	}
	booking.ID = 42

	redirect, err := BuildPaymentRedirectURL(booking)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := url.Parse(redirect)
	if err != nil {
		t.Fatalf("redirect is not a URL: %v", err)
	}
	if parsed.Host != "sandbox.payfast.co.za" {
		t.Errorf("host = %q, want sandbox default", parsed.Host)
	}

	q := parsed.Query()
	if got := q.Get("amount"); got != "500.00" {
		t.Errorf("amount = %q, want two-decimal formatting", got)
	}
	if got := q.Get("item_name"); got != "Booking #42" {
		t.Errorf("item_name = %q, want \"Booking #42\"", got)
	}
	if got := q.Get("merchant_id"); got != "10000100" {
		t.Errorf("merchant_id = %q", got)
	}
	if got := q.Get("name_first"); got != "Jane Doe" {
		t.Errorf("name_first = %q", got)
	}
	if q.Get("signature") == "" {
		t.Error("signature missing from redirect URL")
	}
}

func TestBuildPaymentRedirectURL_MissingCredentials(t *testing.T) {
	t.Setenv("PAYFAST_MERCHANT_ID", "")
	t.Setenv("PAYFAST_MERCHANT_KEY", "")

	booking := &models.Booking{BookingAmount: 100}
	if _, err := BuildPaymentRedirectURL(booking); err == nil {
		t.Fatal("expected error without merchant credentials")
	}
}

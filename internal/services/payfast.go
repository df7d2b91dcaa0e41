package services

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

// PayFast signs its payloads with an MD5 over the urlencoded fields in the
// order they appear, with the merchant passphrase appended. Field order
// matters on both legs, so fields are kept as an ordered slice and the
// webhook body is parsed by hand instead of through url.Values.

type paymentField struct {
	key   string
	value string
}

// BuildPaymentRedirectURL constructs the signed gateway redirect for a
// freshly created booking.
func BuildPaymentRedirectURL(booking *models.Booking) (string, error) {
	merchantID := os.Getenv("PAYFAST_MERCHANT_ID")
	merchantKey := os.Getenv("PAYFAST_MERCHANT_KEY")
	if merchantID == "" || merchantKey == "" {
		return "", fmt.Errorf("payfast merchant credentials not configured")
	}

	fields := []paymentField{
		{"merchant_id", merchantID},
		{"merchant_key", merchantKey},
		{"return_url", os.Getenv("PAYFAST_RETURN_URL")},
		{"cancel_url", os.Getenv("PAYFAST_CANCEL_URL")},
		{"notify_url", os.Getenv("PAYFAST_NOTIFY_URL")},
		{"amount", fmt.Sprintf("%.2f", booking.BookingAmount)},
		{"item_name", BookingRef(booking.ID)},
		{"name_first", booking.FullName},
		{"email_address", booking.Email},
	}

	query := encodeFields(fields)
	if passphrase := os.Getenv("PAYFAST_PASSPHRASE"); passphrase != "" {
		query += "&signature=" + signPayload(encodeFields(fields), passphrase)
	}

	base := os.Getenv("PAYFAST_PROCESS_URL")
	if base == "" {
		base = "https://sandbox.payfast.co.za/eng/process"
	}

	return base + "?" + query, nil
}

// BookingRef formats the opaque item_name the gateway echoes back on the
// webhook leg.
func BookingRef(bookingID uint) string {
	return fmt.Sprintf("Booking #%d", bookingID)
}

// ParseBookingRef recovers the booking id from the gateway's item_name field.
func ParseBookingRef(itemName string) (uint, error) {
	_, ref, found := strings.Cut(itemName, "#")
	if !found {
		return 0, fmt.Errorf("malformed item_name %q", itemName)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(ref), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed item_name %q: %v", itemName, err)
	}
	return uint(id), nil
}

// VerifyNotificationSignature checks the MD5 passphrase signature on a raw
// webhook body. The signature covers every field except "signature" itself,
// in the order the gateway posted them.
func VerifyNotificationSignature(rawBody []byte, passphrase string) bool {
	var fields []paymentField
	var received string

	for _, pair := range strings.Split(string(rawBody), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return false
		}
		if key == "signature" {
			received = decoded
			continue
		}
		fields = append(fields, paymentField{key: key, value: decoded})
	}

	if received == "" {
		return false
	}

	expected := signPayload(encodeFields(fields), passphrase)
	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}

func encodeFields(fields []paymentField) string {
	var parts []string
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		parts = append(parts, f.key+"="+url.QueryEscape(f.value))
	}
	return strings.Join(parts, "&")
}

func signPayload(payload, passphrase string) string {
	if passphrase != "" {
		payload += "&passphrase=" + url.QueryEscape(passphrase)
	}
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "CleanWave Services"
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #392C3A; margin: 0;">CleanWave</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 CleanWave Services. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "CleanWave-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

// SendInvoiceEmail mails the booking confirmation and invoice after payment
// settles. Expects booking.ServiceType to be populated.
func SendInvoiceEmail(booking *models.Booking) error {
	subject := "Booking Confirmation & Invoice - CleanWave"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Confirmation &amp; Invoice</h1>
					<table style="width:100%%; margin-bottom: 20px;">
						<tr><td><strong>Invoice</strong></td><td>#%d</td></tr>
						<tr><td><strong>Date</strong></td><td>%s</td></tr>
						<tr><td><strong>Customer</strong></td><td>%s</td></tr>
						<tr><td><strong>Address</strong></td><td>%s, %s, %s</td></tr>
						<tr><td><strong>Service</strong></td><td>%s</td></tr>
						<tr><td><strong>Total Amount</strong></td><td><strong>R%.2f</strong></td></tr>
					</table>
					<p>Thank you for choosing CleanWave Services. We look forward to serving you!</p>
				</div>`+emailFooter,
		booking.ID,
		booking.ServiceStartTime.Format("Jan 02, 2006 15:04"),
		booking.FullName,
		booking.Address, booking.City, booking.Province,
		booking.ServiceType.Name,
		booking.BookingAmount)

	return sendEmail([]string{booking.Email}, subject, body)
}

// SendWaitlistConfirmationEmail acknowledges a waitlist signup.
func SendWaitlistConfirmationEmail(email string) error {
	subject := "You're on the waitlist! - CleanWave"
	body := emailHeader + `
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<p>Thanks for signing up! We'll notify you when our shop launches.</p>
				</div>` + emailFooter

	return sendEmail([]string{email}, subject, body)
}

// SendServiceCompleteEmail tells the customer their cleaning is done.
func SendServiceCompleteEmail(booking *models.Booking) error {
	subject := "Your Cleaning Service is Complete! - CleanWave"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<p>Hi there %s,</p>
					<p>Your booking <strong>#%d</strong> for <strong>%s</strong> has been completed.</p>
					<p>We hope your space feels spotless!</p>
					<p>Thanks for choosing CleanWave!</p>
				</div>`+emailFooter,
		booking.FullName, booking.ID, booking.ServiceType.Name)

	return sendEmail([]string{booking.Email}, subject, body)
}

// SendDriverStatusEmail tells the customer their team is en route or has
// arrived, with photos of who to expect. Image URLs are resolved by the
// caller so the template stays storage-agnostic.
func SendDriverStatusEmail(booking *models.Booking, driverImageURL, cleanerImageURL string) error {
	intro := "Your cleaning team is on the way! Here's who to expect:"
	if booking.BookingStatus == models.BookingStatusArrived {
		intro = "The driver and cleaner have arrived at your location."
	}

	driverName, cleanerName := "", ""
	if booking.AssignedDriver != nil {
		driverName = booking.AssignedDriver.User.FullName
	}
	if booking.AssignedCleaner != nil {
		cleanerName = booking.AssignedCleaner.User.FullName
	}

	subject := "Status Update! - CleanWave"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<p>Hi there %s,</p>
					<p>%s</p>
					<table style="width:100%%; margin-top:20px;">
						<tr>
							<td style="text-align:center;">
								<img src="%s" alt="Driver photo" style="width:100px; height:100px; border-radius:50%%; object-fit:cover;" />
								<p><strong>Driver:</strong> %s</p>
							</td>
							<td style="text-align:center;">
								<img src="%s" alt="Cleaner photo" style="width:100px; height:100px; border-radius:50%%; object-fit:cover;" />
								<p><strong>Cleaner:</strong> %s</p>
							</td>
						</tr>
					</table>
					<p>Status: <strong>%s</strong></p>
					<p>We hope you're ready for a spotless experience!</p>
				</div>`+emailFooter,
		booking.FullName, intro,
		driverImageURL, driverName,
		cleanerImageURL, cleanerName,
		booking.BookingStatus)

	return sendEmail([]string{booking.Email}, subject, body)
}

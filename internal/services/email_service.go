package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, fullName string) error
	SendAccountLockedEmail(email string, minutes int) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to TaskShield!")

	body := fmt.Sprintf(`
		<h2>Welcome to TaskShield, %s!</h2>
		<p>Your account has been successfully created.</p>
		<p>You can now sign in and start tracking your tasks.</p>
		<p>Best regards,<br>The TaskShield Team</p>
	`, fullName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}

func (s *emailService) SendAccountLockedEmail(email string, minutes int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your account has been locked")

	body := fmt.Sprintf(`
		<h3>Account temporarily locked</h3>
		<p>Too many failed login attempts were made on your account.</p>
		<p>The lock expires in %d minutes.</p>
		<p>If this was not you, ask an administrator to review your account.</p>
	`, minutes)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send account locked email: %w", err)
	}

	return nil
}

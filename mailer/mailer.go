// Package mailer delivers password reset links. The core only produces
// (email, token, expiry); how the link reaches the user is a delivery
// concern, so the Sender interface keeps it swappable.
package mailer

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sender delivers a password reset token out-of-band.
type Sender interface {
	SendPasswordReset(toEmail, token string, expiresAt time.Time) error
}

// BuildResetLink appends the token to the configured PASSWORD_RESET_URL base.
func BuildResetLink(token string) string {
	base := os.Getenv("PASSWORD_RESET_URL")
	if base == "" {
		base = "/reset-password"
	}

	escapedToken := url.QueryEscape(token)
	if strings.Contains(base, "?") {
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			return base + "token=" + escapedToken
		}
		return base + "&token=" + escapedToken
	}
	return base + "?token=" + escapedToken
}

// LogSender writes the reset link to the server log instead of sending mail.
// This is the fallback when no SMTP host is configured.
type LogSender struct{}

func (LogSender) SendPasswordReset(toEmail, token string, expiresAt time.Time) error {
	log.Printf("Password reset link for %s (valid until %s): %s",
		toEmail, expiresAt.Format(time.RFC3339), BuildResetLink(token))
	return nil
}

// Config holds SMTP settings, loaded from the environment.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
}

// LoadConfig reads SMTP_* environment variables. Port defaults to 587.
func LoadConfig() Config {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}

	return Config{
		Host:        os.Getenv("SMTP_HOST"),
		Port:        port,
		Username:    os.Getenv("SMTP_USERNAME"),
		Password:    os.Getenv("SMTP_PASSWORD"),
		FromAddress: os.Getenv("SMTP_FROM"),
	}
}

// SMTPSender delivers reset links by email over SMTP.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender returns a Sender backed by the given SMTP configuration.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendPasswordReset(toEmail, token string, expiresAt time.Time) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	from := s.cfg.FromAddress
	if from == "" {
		from = s.cfg.Username
	}
	if from == "" {
		return fmt.Errorf("smtp from address is not configured")
	}

	body := fmt.Sprintf(
		"A password reset was requested for this address.\r\n\r\n"+
			"Reset your password here: %s\r\n\r\n"+
			"The link expires at %s. If you did not request this, you can ignore this message.\r\n",
		BuildResetLink(token), expiresAt.Format(time.RFC1123))
	msg := buildMessage(from, toEmail, "Reset Password", body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if s.cfg.Username == "" && s.cfg.Password == "" {
		return smtp.SendMail(addr, nil, from, []string{toEmail}, []byte(msg))
	}

	if s.cfg.Port == 465 {
		return s.sendSMTPTLS(addr, auth, from, toEmail, msg)
	}

	return smtp.SendMail(addr, auth, from, []string{toEmail}, []byte(msg))
}

func (s *SMTPSender) sendSMTPTLS(addr string, auth smtp.Auth, from, toEmail, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}

	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body)
}

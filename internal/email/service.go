package email

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

var ErrNoRecipient = errors.New("email recipient is required")

// Config holds the SMTP relay settings. Username and Password are optional;
// when Username is empty mail is sent without authentication.
type Config struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	cfg      Config
	sendMail sendFunc
}

// NewService creates a new email service
func NewService(cfg Config) *Service {
	return &Service{
		cfg:      cfg,
		sendMail: smtp.SendMail,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(c Confirmation) error {
	if strings.TrimSpace(c.To) == "" {
		return ErrNoRecipient
	}

	subject := fmt.Sprintf("Your Sugraé order %s is confirmed", shortID(c.OrderID))
	body, err := BuildOrderConfirmationBody(c)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	return s.send(c.To, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	log.Printf("[Email] Sent %q to %s", subject, to)
	return nil
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, orderID string, total int64, items []OrderItem) error {
	shortID := orderID
	if len(orderID) > 8 {
		shortID = orderID[:8]
	}
	subject := fmt.Sprintf("Order confirmed (#%s)", shortID)
	body := BuildOrderConfirmationBody(orderID, total, items)
	return s.send(to, subject, "text/html", body)
}

// SendOperatorAlert mails the on-call operator address about an event
// that needs manual reconciliation.
func (s *Service) SendOperatorAlert(to, eventType, eventID string, payload []byte) error {
	subject := fmt.Sprintf("[ALERT] %s (%s)", eventType, eventID)
	body := BuildOperatorAlertBody(eventType, eventID, payload)
	return s.send(to, subject, "text/plain", body)
}

func (s *Service) send(to, subject, contentType, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, contentType, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

package services

import "log"

// EmailSender delivers transactional mail. Delivery internals live
// outside this service; production wires a real provider.
type EmailSender interface {
	Send(to, subject, body string) error
}

// LogEmailSender writes mail to the process log instead of sending it.
// Useful for local development and tests.
type LogEmailSender struct{}

// Send logs the message and reports success.
func (LogEmailSender) Send(to, subject, body string) error {
	log.Printf("email to %s [%s]: %s", to, subject, body)
	return nil
}

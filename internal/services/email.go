package services

import (
	"context"
	"fmt"
	"log"

	"gaterepo/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendAccessGranted notifies a gate creator that an invitee joined their repository.
func (s *emailService) SendAccessGranted(ctx context.Context, data *domain.AccessGrantedEmailData) error {
	if data == nil {
		return fmt.Errorf("access granted data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("access_granted", data)
	if err != nil {
		return fmt.Errorf("failed to render access_granted template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send access granted email: %w", err)
	}
	log.Printf("[EMAIL] Access granted notice sent to %s", data.Email)
	return nil
}

// SendInviteOutstanding sends the reconciliation notice for an invitation
// that was issued but never accepted.
func (s *emailService) SendInviteOutstanding(ctx context.Context, data *domain.InviteOutstandingEmailData) error {
	if data == nil {
		return fmt.Errorf("invite outstanding data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invite_outstanding", data)
	if err != nil {
		return fmt.Errorf("failed to render invite_outstanding template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invite outstanding email: %w", err)
	}
	log.Printf("[EMAIL] Outstanding invite notice sent to %s", data.Email)
	return nil
}

package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// AccessGrantedEmailData holds data for the email sent to a gate creator
// after a successful grant.
type AccessGrantedEmailData struct {
	Email           string
	CreatorLogin    string
	InviteeLogin    string
	RepoOwner       string
	RepoName        string
	InvitesRemained int
}

// InviteOutstandingEmailData holds data for the reconciliation notice sent
// when an invitation was issued but never accepted.
type InviteOutstandingEmailData struct {
	Email        string
	InviteeLogin string
	RepoOwner    string
	RepoName     string
	InvitationID int64
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendAccessGranted(ctx context.Context, data *AccessGrantedEmailData) error
	SendInviteOutstanding(ctx context.Context, data *InviteOutstandingEmailData) error
}

package email

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles email sending.
type Service struct {
	fromEmail   string
	fromName    string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service. With an API key emails go
// through SendGrid; without one they are logged to the console so local
// development needs no credentials.
func NewService(fromEmail, fromName, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("email service initialized with SendGrid")
	} else {
		log.Printf("email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// NotifyAssignment tells an agent a lead has been handed to them.
func (s *Service) NotifyAssignment(_ context.Context, agent models.User, lead models.Lead) error {
	subject := fmt.Sprintf("New lead assigned: %s", lead.Identity.FullName)

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>A lead has been assigned to you</h2>
			<p>Hi %s,</p>
			<p>The lead <strong>%s</strong> is now yours to work.</p>
			<ul>
				<li>Phone: %s</li>
				<li>Email: %s</li>
				<li>Status: %s</li>
			</ul>
			<p>Please reach out within one business day.</p>
		</body>
		</html>
	`, agent.Name, lead.Identity.FullName, lead.Identity.Phone, lead.Identity.Email, lead.System.LeadStatus)

	plainText := fmt.Sprintf(`Hi %s,

The lead %s is now yours to work.

Phone: %s
Email: %s
Status: %s

Please reach out within one business day.
`, agent.Name, lead.Identity.FullName, lead.Identity.Phone, lead.Identity.Email, lead.System.LeadStatus)

	if s.useSendGrid {
		return s.sendViaSendGrid(agent.Email, agent.Name, subject, body, plainText)
	}
	return s.logEmailToConsole(agent.Email, subject)
}

// NotifyStaleLeads sends an admin the list of leads going cold.
func (s *Service) NotifyStaleLeads(_ context.Context, admin models.User, stale []models.Lead) error {
	if len(stale) == 0 {
		return nil
	}

	subject := fmt.Sprintf("%d leads are going stale", len(stale))

	list := ""
	plainList := ""
	for _, lead := range stale {
		list += fmt.Sprintf("<li>%s (%s)</li>", lead.Identity.FullName, lead.Identity.Phone)
		plainList += fmt.Sprintf("- %s (%s)\n", lead.Identity.FullName, lead.Identity.Phone)
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Stale lead report</h2>
			<p>Hi %s,</p>
			<p>These leads have sat in New with no activity:</p>
			<ul>%s</ul>
		</body>
		</html>
	`, admin.Name, list)

	plainText := fmt.Sprintf("Hi %s,\n\nThese leads have sat in New with no activity:\n\n%s", admin.Name, plainList)

	if s.useSendGrid {
		return s.sendViaSendGrid(admin.Email, admin.Name, subject, body, plainText)
	}
	return s.logEmailToConsole(admin.Email, subject)
}

func (s *Service) sendViaSendGrid(toEmail, toName, subject, htmlBody, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *Service) logEmailToConsole(toEmail, subject string) error {
	log.Printf("[email] to=%s subject=%q", toEmail, subject)
	return nil
}

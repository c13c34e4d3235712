package service

import (
	"fmt"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/config"

	"gopkg.in/gomail.v2"
)

// Email message types routed through the email queue
const (
	EmailTypeInvitation    = "invitation"
	EmailTypeWelcome       = "welcome"
	EmailTypeFriendRequest = "friend_request"

	EmailQueueName = "email_queue"
	EmailExchange  = "email_exchange"
)

// EmailMessage is the payload published to RabbitMQ for async delivery
type EmailMessage struct {
	Type string            `json:"type"`
	To   string            `json:"to"`
	Data map[string]string `json:"data,omitempty"`
}

type EmailService interface {
	SendInvitationEmail(to, inviterName, token string) error
	SendWelcomeEmail(to, fullName string) error
	SendFriendRequestEmail(to, requesterName string) error
}

type emailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) EmailService {
	return &emailService{cfg: cfg}
}

// SendInvitationEmail sends the invitation with the registration link
func (s *emailService) SendInvitationEmail(to, inviterName, token string) error {
	link := fmt.Sprintf("%s/register?token=%s", s.cfg.ClientURL, token)
	body := fmt.Sprintf(`
		<h2>You've been invited!</h2>
		<p><b>%s</b> has vouched for you to join their trusted ticket network.</p>
		<p>Members trade concert tickets only with friends and friends-of-friends,
		so every deal stays within people someone vouches for.</p>
		<p><a href="%s">Create your account</a></p>
		<p>This invitation expires in %d days.</p>
	`, inviterName, link, s.cfg.InvitationTTLDays)

	return s.send(to, fmt.Sprintf("%s invited you to their ticket network", inviterName), body)
}

// SendWelcomeEmail greets a user who just redeemed an invitation
func (s *emailService) SendWelcomeEmail(to, fullName string) error {
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account is ready. Add the friends you trust, then start
		listing or looking for tickets.</p>
		<p>Remember: you only ever see listings from friends and
		friends-of-friends.</p>
	`, fullName)

	return s.send(to, "Welcome to the network", body)
}

// SendFriendRequestEmail is the email copy of an in-app friend request
// notification. Only sent when the recipient has email notifications on.
func (s *emailService) SendFriendRequestEmail(to, requesterName string) error {
	body := fmt.Sprintf(`
		<p><b>%s</b> wants to add you as a trusted friend.</p>
		<p>Accepting shares your listings with them and their friends.</p>
	`, requesterName)

	return s.send(to, fmt.Sprintf("%s sent you a friend request", requesterName), body)
}

func (s *emailService) send(to, subject, htmlBody string) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

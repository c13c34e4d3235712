package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/config"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"gorm.io/gorm"
)

type InvitationService interface {
	CreateInvitation(inviterID, email string) (*model.Invitation, error)
	GetInvitationByToken(token string) (*model.Invitation, error)
	GetInvitationsByInviter(inviterID string, limit, offset int) ([]*model.Invitation, error)
	// RedeemInvitation validates and consumes a token; called by the auth
	// service during registration.
	RedeemInvitation(token, email string) (*model.Invitation, error)
}

type invitationService struct {
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	emailService   EmailService
	rabbitMQ       *util.RabbitMQClient
	cfg            *config.Config
}

func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	rabbitMQ *util.RabbitMQClient,
	cfg *config.Config,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		rabbitMQ:       rabbitMQ,
		cfg:            cfg,
	}
}

// CreateInvitation vouches an email address into the network and sends the
// invitation email
func (s *invitationService) CreateInvitation(inviterID, email string) (*model.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	inviter, err := s.userRepo.FindByID(inviterID)
	if err != nil {
		return nil, errors.New("inviter not found")
	}

	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, errors.New("this email is already a member")
	}

	if existing, err := s.invitationRepo.FindPendingByEmail(email); err == nil && existing != nil {
		if time.Now().Before(existing.ExpiresAt) {
			return nil, errors.New("an invitation for this email is already pending")
		}
		// Expired but never marked: tidy it up and allow a fresh one
		existing.Status = model.InvitationStatusExpired
		if err := s.invitationRepo.Update(existing); err != nil {
			log.Printf("Failed to expire stale invitation %s: %v", existing.ID, err)
		}
	}

	invitation := &model.Invitation{
		InviterID: inviterID,
		Email:     email,
		Status:    model.InvitationStatusPending,
		ExpiresAt: time.Now().AddDate(0, 0, s.cfg.InvitationTTLDays),
	}

	if err := s.invitationRepo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.sendInvitationEmail(invitation, inviter.FullName)
	return invitation, nil
}

// GetInvitationByToken returns an invitation for the registration page
func (s *invitationService) GetInvitationByToken(token string) (*model.Invitation, error) {
	invitation, err := s.invitationRepo.FindByToken(token)
	if err != nil {
		return nil, errors.New("invitation not found")
	}
	return invitation, nil
}

// GetInvitationsByInviter lists a user's sent invitations
func (s *invitationService) GetInvitationsByInviter(inviterID string, limit, offset int) ([]*model.Invitation, error) {
	return s.invitationRepo.FindByInviterID(inviterID, limit, offset)
}

// RedeemInvitation consumes a pending, unexpired token
func (s *invitationService) RedeemInvitation(token, email string) (*model.Invitation, error) {
	invitation, err := s.invitationRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid invitation token")
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	if invitation.Status != model.InvitationStatusPending {
		return nil, errors.New("invitation has already been used")
	}
	if time.Now().After(invitation.ExpiresAt) {
		invitation.Status = model.InvitationStatusExpired
		if err := s.invitationRepo.Update(invitation); err != nil {
			log.Printf("Failed to expire invitation %s: %v", invitation.ID, err)
		}
		return nil, errors.New("invitation has expired")
	}
	if !strings.EqualFold(invitation.Email, email) {
		return nil, errors.New("invitation was issued for a different email")
	}

	invitation.Status = model.InvitationStatusAccepted
	if err := s.invitationRepo.Update(invitation); err != nil {
		return nil, fmt.Errorf("failed to redeem invitation: %w", err)
	}

	return invitation, nil
}

// sendInvitationEmail publishes the email to RabbitMQ when available and
// falls back to sending directly otherwise
func (s *invitationService) sendInvitationEmail(invitation *model.Invitation, inviterName string) {
	if s.rabbitMQ != nil && !s.rabbitMQ.IsClosed() {
		msg := EmailMessage{
			Type: EmailTypeInvitation,
			To:   invitation.Email,
			Data: map[string]string{
				"inviter_name": inviterName,
				"token":        invitation.Token,
			},
		}
		if body, err := json.Marshal(msg); err == nil {
			pubErr := s.rabbitMQ.Publish(EmailExchange, EmailQueueName, body)
			if pubErr == nil {
				return
			}
			log.Printf("Failed to publish invitation email, sending directly: %v", pubErr)
		}
	}

	go func() {
		if err := s.emailService.SendInvitationEmail(invitation.Email, inviterName, invitation.Token); err != nil {
			log.Printf("Failed to send invitation email to %s: %v", invitation.Email, err)
		}
	}()
}

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

	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 24 * time.Hour

type AuthService interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetMe(userID string) (*model.User, error)
	UpdateEmailNotifications(userID string, enabled bool) (*model.User, error)
	SearchUsers(keyword string, limit, offset int) ([]*model.User, error)
	EmailExists(email string) (bool, error)
}

type RegisterRequest struct {
	InvitationToken string `json:"invitation_token" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"full_name" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	City            *string `json:"city,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type authService struct {
	userRepo          repository.UserRepository
	invitationService InvitationService
	rabbitMQ          *util.RabbitMQClient
	cfg               *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	invitationService InvitationService,
	rabbitMQ *util.RabbitMQClient,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:          userRepo,
		invitationService: invitationService,
		rabbitMQ:          rabbitMQ,
		cfg:               cfg,
	}
}

// Register creates an account from a valid invitation. There is no open
// signup: every member enters through someone who vouched for them.
func (s *authService) Register(req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, errors.New("email is already registered")
	}

	invitation, err := s.invitationService.RedeemInvitation(req.InvitationToken, email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		City:         req.City,
		InvitedByID:  &invitation.InviterID,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.cfg.JWTSecret, accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.publishWelcomeEmail(user)

	return &AuthResponse{Token: token, User: user}, nil
}

// Login authenticates with email and password
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.cfg.JWTSecret, accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// GetMe returns the authenticated user
func (s *authService) GetMe(userID string) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

// UpdateEmailNotifications toggles the email-copy preference
func (s *authService) UpdateEmailNotifications(userID string, enabled bool) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	user.EmailNotifications = enabled
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update preference: %w", err)
	}

	return user, nil
}

// SearchUsers finds members by name or email
func (s *authService) SearchUsers(keyword string, limit, offset int) ([]*model.User, error) {
	return s.userRepo.Search(keyword, limit, offset)
}

// EmailExists reports whether an email belongs to a member. Exposed to an
// abuse-guarded endpoint used by the invitation form.
func (s *authService) EmailExists(email string) (bool, error) {
	return s.userRepo.EmailExists(strings.ToLower(strings.TrimSpace(email)))
}

func (s *authService) publishWelcomeEmail(user *model.User) {
	if s.rabbitMQ == nil {
		return
	}

	msg := EmailMessage{
		Type: EmailTypeWelcome,
		To:   user.Email,
		Data: map[string]string{"full_name": user.FullName},
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if err := s.rabbitMQ.Publish(EmailExchange, EmailQueueName, body); err != nil {
		log.Printf("Failed to publish welcome email for %s: %v", user.ID, err)
	}
}

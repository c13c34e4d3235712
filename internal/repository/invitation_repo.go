package repository

import (
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"

	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(invitation *model.Invitation) error
	FindByToken(token string) (*model.Invitation, error)
	FindPendingByEmail(email string) (*model.Invitation, error)
	FindByInviterID(inviterID string, limit, offset int) ([]*model.Invitation, error)
	Update(invitation *model.Invitation) error
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// Create creates a new invitation
func (r *invitationRepository) Create(invitation *model.Invitation) error {
	return r.db.Create(invitation).Error
}

// FindByToken finds an invitation by its token
func (r *invitationRepository) FindByToken(token string) (*model.Invitation, error) {
	var invitation model.Invitation
	err := r.db.Preload("Inviter").Where("token = ?", token).First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindPendingByEmail finds a pending invitation for an email address
func (r *invitationRepository) FindPendingByEmail(email string) (*model.Invitation, error) {
	var invitation model.Invitation
	err := r.db.Preload("Inviter").
		Where("email = ? AND status = ?", email, model.InvitationStatusPending).
		Order("created_at DESC").
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindByInviterID finds invitations sent by a user
func (r *invitationRepository) FindByInviterID(inviterID string, limit, offset int) ([]*model.Invitation, error) {
	var invitations []*model.Invitation
	err := r.db.
		Where("inviter_id = ?", inviterID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// Update updates an invitation
func (r *invitationRepository) Update(invitation *model.Invitation) error {
	return r.db.Save(invitation).Error
}

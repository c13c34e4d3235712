package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"
)

// WSHub is the part of the websocket hub the notification service needs
type WSHub interface {
	BroadcastToUser(userID string, payload map[string]interface{})
}

type NotificationService interface {
	SendFriendRequestNotification(targetID, requesterID, requesterName, friendshipID string) error
	SendFriendAcceptedNotification(userID, accepterID, accepterName, friendshipID string) error
	SendFriendRemovedNotification(userID, removerID, removerName string) error
	SendWantedMatchNotification(userID, sellerName, ticketID, concertName string) error
	GetNotificationsByUserID(userID string, limit, offset int) ([]*model.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(notificationID, userID string) error
	SetWSHub(hub WSHub)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	rabbitMQ  *util.RabbitMQClient
	wsHub     WSHub
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	rabbitMQ *util.RabbitMQClient,
) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		rabbitMQ:  rabbitMQ,
	}
}

// SetWSHub sets the WebSocket hub for realtime notifications
func (s *notificationService) SetWSHub(hub WSHub) {
	s.wsHub = hub
}

// SendFriendRequestNotification notifies the target of a new friend request
func (s *notificationService) SendFriendRequestNotification(targetID, requesterID, requesterName, friendshipID string) error {
	err := s.deliver(&model.Notification{
		UserID:   targetID,
		SenderID: &requesterID,
		Type:     model.NotificationTypeFriendRequest,
		Title:    "New friend request",
		Message:  fmt.Sprintf("%s wants to add you as a trusted friend", requesterName),
		TargetID: &friendshipID,
	})
	if err != nil {
		return err
	}

	s.maybeEmailCopy(targetID, EmailTypeFriendRequest, map[string]string{
		"requester_name": requesterName,
	})
	return nil
}

// SendFriendAcceptedNotification notifies the requester their request was accepted
func (s *notificationService) SendFriendAcceptedNotification(userID, accepterID, accepterName, friendshipID string) error {
	return s.deliver(&model.Notification{
		UserID:   userID,
		SenderID: &accepterID,
		Type:     model.NotificationTypeFriendAccepted,
		Title:    "Friend request accepted",
		Message:  fmt.Sprintf("%s accepted your friend request", accepterName),
		TargetID: &friendshipID,
	})
}

// SendFriendRemovedNotification notifies a user the friendship was severed
func (s *notificationService) SendFriendRemovedNotification(userID, removerID, removerName string) error {
	return s.deliver(&model.Notification{
		UserID:   userID,
		SenderID: &removerID,
		Type:     model.NotificationTypeFriendRemoved,
		Title:    "Friend removed",
		Message:  fmt.Sprintf("%s removed you from their trusted friends", removerName),
	})
}

// SendWantedMatchNotification tells a user a ticket matching their wanted
// listing appeared in their network
func (s *notificationService) SendWantedMatchNotification(userID, sellerName, ticketID, concertName string) error {
	return s.deliver(&model.Notification{
		UserID:   userID,
		Type:     model.NotificationTypeWantedMatched,
		Title:    "A ticket you're looking for was listed",
		Message:  fmt.Sprintf("%s listed tickets for %s", sellerName, concertName),
		TargetID: &ticketID,
	})
}

// GetNotificationsByUserID returns a user's notifications
func (s *notificationService) GetNotificationsByUserID(userID string, limit, offset int) ([]*model.Notification, error) {
	return s.notifRepo.FindByUserID(userID, limit, offset)
}

// GetUnreadCount counts unread notifications for a user
func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	return s.notifRepo.CountUnreadByUserID(userID)
}

// MarkAsRead marks one notification read, if it belongs to the user
func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return fmt.Errorf("notification not found")
	}
	if notification.UserID != userID {
		return fmt.Errorf("unauthorized: not your notification")
	}
	return s.notifRepo.MarkAsRead(notificationID)
}

// MarkAllAsRead marks all of a user's notifications read
func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notifRepo.MarkAllAsRead(userID)
}

// DeleteNotification deletes a notification, if it belongs to the user
func (s *notificationService) DeleteNotification(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return fmt.Errorf("notification not found")
	}
	if notification.UserID != userID {
		return fmt.Errorf("unauthorized: not your notification")
	}
	return s.notifRepo.Delete(notificationID)
}

// deliver saves the notification and pushes it over WebSocket
func (s *notificationService) deliver(notification *model.Notification) error {
	if err := s.notifRepo.Create(notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.wsHub != nil {
		s.wsHub.BroadcastToUser(notification.UserID, map[string]interface{}{
			"id":         notification.ID,
			"user_id":    notification.UserID,
			"type":       notification.Type,
			"title":      notification.Title,
			"message":    notification.Message,
			"target_id":  notification.TargetID,
			"is_read":    notification.IsRead,
			"created_at": notification.CreatedAt,
		})
	}

	return nil
}

// maybeEmailCopy publishes an email copy of a notification if the recipient
// opted in. Best-effort: failures are logged, never propagated.
func (s *notificationService) maybeEmailCopy(userID, emailType string, data map[string]string) {
	if s.rabbitMQ == nil {
		return
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("Email copy skipped, user %s not found: %v", userID, err)
		return
	}
	if !user.EmailNotifications {
		return
	}

	msg := EmailMessage{Type: emailType, To: user.Email, Data: data}
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if err := s.rabbitMQ.Publish(EmailExchange, EmailQueueName, body); err != nil {
		log.Printf("Failed to publish %s email for %s: %v", emailType, userID, err)
	}
}

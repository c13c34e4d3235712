package service

import (
	"encoding/json"
	"log"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailWorker consumes email messages from RabbitMQ and delivers them over
// SMTP, so request handlers never block on a mail server.
type EmailWorker struct {
	emailService EmailService
	rabbitMQ     *util.RabbitMQClient
	stopChan     chan bool
}

// NewEmailWorker creates a new email worker
func NewEmailWorker(emailService EmailService, rabbitMQ *util.RabbitMQClient) *EmailWorker {
	return &EmailWorker{
		emailService: emailService,
		rabbitMQ:     rabbitMQ,
		stopChan:     make(chan bool),
	}
}

// Start starts consuming email messages from RabbitMQ
func (w *EmailWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil // RabbitMQ not available, worker will not start
	}

	if err := w.rabbitMQ.DeclareQueue(EmailExchange, EmailQueueName); err != nil {
		return err
	}

	channel := w.rabbitMQ.GetChannel()
	msgs, err := channel.Consume(
		EmailQueueName,
		"",    // consumer tag
		false, // auto-ack: we ack after a successful send
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case delivery, ok := <-msgs:
				if !ok {
					log.Println("Email worker: channel closed, stopping")
					return
				}
				w.handleDelivery(delivery)
			case <-w.stopChan:
				log.Println("Email worker stopped")
				return
			}
		}
	}()

	log.Println("Email worker consuming from", EmailQueueName)
	return nil
}

// Stop stops the worker
func (w *EmailWorker) Stop() {
	close(w.stopChan)
}

func (w *EmailWorker) handleDelivery(delivery amqp.Delivery) {
	var msg EmailMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("Email worker: dropping malformed message: %v", err)
		delivery.Nack(false, false) // do not requeue garbage
		return
	}

	var err error
	switch msg.Type {
	case EmailTypeInvitation:
		err = w.emailService.SendInvitationEmail(msg.To, msg.Data["inviter_name"], msg.Data["token"])
	case EmailTypeWelcome:
		err = w.emailService.SendWelcomeEmail(msg.To, msg.Data["full_name"])
	case EmailTypeFriendRequest:
		err = w.emailService.SendFriendRequestEmail(msg.To, msg.Data["requester_name"])
	default:
		log.Printf("Email worker: unknown message type %q, dropping", msg.Type)
		delivery.Nack(false, false)
		return
	}

	if err != nil {
		log.Printf("Email worker: failed to send %s email to %s: %v", msg.Type, msg.To, err)
		delivery.Nack(false, true) // requeue, SMTP may be back later
		return
	}

	delivery.Ack(false)
}

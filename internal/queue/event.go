// Package queue defines the user lifecycle messages published to RabbitMQ and
// the publisher that delivers them.
package queue

import "github.com/iliyamo/auth-service/internal/model"

// Queue names consumed by downstream services.
const (
	SellerDashboardUserCreated = "AUTH_SELLER_DASHBOARD.USER_CREATED"
	NotificationUserCreated    = "AUTH_NOTIFICATION.USER_CREATED"
)

// UserCreatedEvent is the dashboard payload: the public user record.  The
// password hash never leaves the service.
type UserCreatedEvent = model.PublicUser

// UserNotificationEvent is what the notification service needs to send the
// welcome email.
type UserNotificationEvent struct {
	Email    string         `json:"email"`
	FullName model.FullName `json:"fullName"`
}

func NewUserNotificationEvent(u model.User) UserNotificationEvent {
	return UserNotificationEvent{Email: u.Email, FullName: u.FullName}
}

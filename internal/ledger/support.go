package ledger

import (
	"context"      // Request scoped cancellation
	"strings"      // Input trimming
	"unicode/utf8" // Message length

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/store"  // Persistence contract
	"yield_wallet/internal/utils"  // Ids

	"github.com/sirupsen/logrus" // Logging library
)

const maxMessageLen = 2000

// SendMessage appends a line to the user's support thread. Admin replies also notify the user.
func (s *Service) SendMessage(ctx context.Context, userID, sender, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxMessageLen {
		return nil, ErrEmptyMessage
	}
	if sender != domain.SenderUser && sender != domain.SenderAdmin {
		return nil, ErrInvalidAction
	}
	var msg *domain.Message
	err := s.update(ctx, "send_message", func(tx store.Tx) error {
		if _, err := lockActive(tx, userID); err != nil {
			return err
		}
		m := &domain.Message{
			ID:        utils.NewID(),
			UserID:    userID,
			Sender:    sender,
			Text:      text,
			CreatedAt: s.now(),
		}
		if err := tx.AppendMessage(m); err != nil {
			return err
		}
		if sender == domain.SenderAdmin {
			if err := s.notify(tx, userID, domain.NotifySupport, "New reply from support"); err != nil {
				return err
			}
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID, // Thread owner
		"sender":  sender, // user or admin
	}).Debug("Support message sent")
	return msg, nil
}

// Thread returns the support conversation of a user, oldest first
func (s *Service) Thread(ctx context.Context, userID string) ([]domain.Message, error) {
	if _, err := s.User(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, store.Filter{UserID: userID})
}

// Typing records that the user is composing a support message
func (s *Service) Typing(ctx context.Context, userID string) error {
	now := s.now()
	return s.store.TouchUser(ctx, userID, domain.Activity{LastTyping: &now, LastActive: &now})
}

// MarkActive records an authenticated request
func (s *Service) MarkActive(ctx context.Context, userID string) error {
	now := s.now()
	return s.store.TouchUser(ctx, userID, domain.Activity{LastActive: &now})
}

// Notifications lists a user's notifications, newest first
func (s *Service) Notifications(ctx context.Context, userID string, page, pageSize int) ([]domain.Notification, error) {
	return s.store.ListNotifications(ctx, store.Filter{UserID: userID, Page: page, PageSize: pageSize})
}

// MarkNotificationsRead flags all of a user's notifications as read
func (s *Service) MarkNotificationsRead(ctx context.Context, userID string) error {
	return s.store.MarkNotificationsRead(ctx, userID)
}

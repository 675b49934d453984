package service

import (
	"context"
	"strings"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/internal/repository"
	"go.uber.org/zap"
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, error)
	Send(ctx context.Context, senderID, receiverID, content string) error
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, userID, otherUserID string) ([]*models.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	publisher   realtime.Publisher
	logger      *zap.Logger
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	publisher realtime.Publisher,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// SendMessage persists the message, then publishes the stored record to the
// receiver's room and to the sender's room, in that order. Nothing is
// published when the write fails.
func (s *messageService) SendMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, apperrors.Validation("senderId and receiverId are required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("content is required")
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.Error("failed to persist message",
			zap.String("sender_id", senderID),
			zap.String("receiver_id", receiverID),
			zap.Error(err))
		return nil, apperrors.Persistence("save message", err)
	}

	evt, err := realtime.NewEvent(realtime.EventReceiveMessage, msg)
	if err != nil {
		s.logger.Error("failed to encode message event", zap.Error(err))
		return msg, nil
	}
	for _, room := range []string{receiverID, senderID} {
		if err := s.publisher.Publish(ctx, room, evt); err != nil {
			s.logger.Warn("failed to publish message",
				zap.String("room", room),
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}

	return msg, nil
}

// Send adapts SendMessage for the websocket relay, which has no reply path.
func (s *messageService) Send(ctx context.Context, senderID, receiverID, content string) error {
	_, err := s.SendMessage(ctx, senderID, receiverID, content)
	if err != nil {
		s.logger.Debug("websocket message dropped", zap.Error(err))
	}
	return err
}

// ListConversations returns one entry per counterpart, most recent contact
// first.
func (s *messageService) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	messages, err := s.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("fetch conversations", err)
	}

	latest := make(map[string]*models.Message)
	order := make([]string, 0)
	for _, m := range messages {
		other := m.Counterpart(userID)
		if _, ok := latest[other]; ok {
			continue
		}
		latest[other] = m
		order = append(order, other)
	}

	users, err := s.userRepo.GetByIDs(ctx, order)
	if err != nil {
		return nil, apperrors.Persistence("fetch conversation users", err)
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	conversations := make([]*models.Conversation, 0, len(order))
	for _, id := range order {
		user, ok := byID[id]
		if !ok {
			continue
		}
		m := latest[id]
		conversations = append(conversations, &models.Conversation{
			User:        user,
			LastMessage: m.Content,
			Timestamp:   m.CreatedAt,
		})
	}
	return conversations, nil
}

func (s *messageService) ListMessages(ctx context.Context, userID, otherUserID string) ([]*models.Message, error) {
	messages, err := s.messageRepo.ListBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, apperrors.Persistence("fetch messages", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

package repository

import (
	"context"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/jmoiron/sqlx"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListForUser(ctx context.Context, userID string) ([]*models.Message, error)
	ListBetween(ctx context.Context, userID, otherUserID string) ([]*models.Message, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = utils.GenerateID()
	}
	msg.CreatedAt = time.Now()

	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt)
	return err
}

// ListForUser returns every message the user sent or received, newest first.
func (r *messageRepository) ListForUser(ctx context.Context, userID string) ([]*models.Message, error) {
	var messages []*models.Message
	query := `
		SELECT * FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
	`
	err := r.db.SelectContext(ctx, &messages, query, userID)
	return messages, err
}

// ListBetween returns the thread between two users, oldest first.
func (r *messageRepository) ListBetween(ctx context.Context, userID, otherUserID string) ([]*models.Message, error) {
	var messages []*models.Message
	query := `
		SELECT * FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`
	err := r.db.SelectContext(ctx, &messages, query, userID, otherUserID)
	return messages, err
}

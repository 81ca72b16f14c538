package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// MessageRepository persists direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (models.Message, error)
	ListForUser(ctx context.Context, userID uint, userType models.UserType) ([]models.Message, error)
	MarkRead(ctx context.Context, ids []uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return models.Message{}, err
	}

	return message, nil
}

// ListForUser returns every message the user sent or received, oldest first.
func (r *messageRepository) ListForUser(ctx context.Context, userID uint, userType models.UserType) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND sender_type = ?) OR (recipient_id = ? AND recipient_type = ?)", userID, userType, userID, userType).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead flips unread messages to read and reports how many changed.
func (r *messageRepository) MarkRead(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id IN ? AND read = ?", ids, false).
		Update("read", true)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/goer-app/goer/backend/internal/models"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByReceiver(ctx context.Context, receiverID string, page int) ([]models.Notification, int64, error)
	// Delete removes every notification matching filter. Zero matches is not an error.
	Delete(ctx context.Context, filter models.NotificationFilter) (int64, error)
	DeleteByAccount(ctx context.Context, accountID string) error
	UnreadCount(ctx context.Context, receiverID string) (int64, error)
	MarkAsRead(ctx context.Context, id uint, receiverID string) error
	MarkAllAsRead(ctx context.Context, receiverID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return gormErr(r.db.WithContext(ctx).Create(notification).Error)
}

func (r *postgresNotificationRepository) ListByReceiver(ctx context.Context, receiverID string, page int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("receiver_id = ?", receiverID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Offset(int(skip(page))).Limit(models.PageSize).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	// an empty filter would wipe the table
	if filter == (models.NotificationFilter{}) {
		return 0, nil
	}
	q := r.db.WithContext(ctx).Model(&models.Notification{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.SenderID != "" {
		q = q.Where("sender_id = ?", filter.SenderID)
	}
	if filter.ReceiverID != "" {
		q = q.Where("receiver_id = ?", filter.ReceiverID)
	}
	if filter.Item.Model != "" {
		q = q.Where("item_model = ?", filter.Item.Model)
	}
	if !filter.Item.Document.IsZero() {
		q = q.Where("item_document = ?", filter.Item.Document.Hex())
	}
	res := q.Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) UnreadCount(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, id uint, receiverID string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, receiverID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Update("is_read", true).Error
}

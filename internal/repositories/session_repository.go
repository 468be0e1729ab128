package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goer-app/goer/backend/internal/models"
)

// SessionRepository defines the interface for device session operations
type SessionRepository interface {
	// Upsert stores the session, replacing the token of an existing
	// (account, registration token) pair.
	Upsert(ctx context.Context, session *models.Session) error
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}

type postgresSessionRepository struct {
	db *gorm.DB
}

func NewPostgresSessionRepository(db *gorm.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Upsert(ctx context.Context, session *models.Session) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "registration_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(session).Error
	return gormErr(err)
}

func (r *postgresSessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		return nil, gormErr(err)
	}
	return &session, nil
}

func (r *postgresSessionRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("updated_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *postgresSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresSessionRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.Session{}).Error
}

package repositories

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goer-app/goer/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSessionUpsertReplacesTokenPerDevice(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresSessionRepository(newTestDB(t))

	if err := repo.Upsert(ctx, &models.Session{AccountID: "a1", Token: "t1", RegistrationToken: "phone"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(ctx, &models.Session{AccountID: "a1", Token: "t2", RegistrationToken: "phone"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if err := repo.Upsert(ctx, &models.Session{AccountID: "a1", Token: "t3", RegistrationToken: "tablet"}); err != nil {
		t.Fatalf("third upsert: %v", err)
	}

	sessions, err := repo.ListByAccount(ctx, "a1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	if _, err := repo.FindByToken(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected replaced token to be gone, got %v", err)
	}
	s, err := repo.FindByToken(ctx, "t2")
	if err != nil {
		t.Fatalf("find t2: %v", err)
	}
	if s.RegistrationToken != "phone" {
		t.Errorf("unexpected registration token %q", s.RegistrationToken)
	}
}

func TestSessionDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresSessionRepository(newTestDB(t))

	_ = repo.Upsert(ctx, &models.Session{AccountID: "a1", Token: "t1", RegistrationToken: "r1"})
	_ = repo.Upsert(ctx, &models.Session{AccountID: "a1", Token: "t2", RegistrationToken: "r2"})

	if err := repo.DeleteByToken(ctx, "t1"); err != nil {
		t.Fatalf("delete by token: %v", err)
	}
	if err := repo.DeleteByToken(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repo.DeleteByAccount(ctx, "a1"); err != nil {
		t.Fatalf("delete by account: %v", err)
	}
	sessions, _ := repo.ListByAccount(ctx, "a1")
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
}

func TestNotificationDeleteByFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(newTestDB(t))

	post := models.ItemRef{Model: models.ItemPost, Document: primitive.NewObjectID()}
	other := models.ItemRef{Model: models.ItemPost, Document: primitive.NewObjectID()}
	seed := []models.Notification{
		{Type: models.NotificationMention, SenderID: "s", ReceiverID: "u1", ItemModel: post.Model, ItemDocument: post.Document.Hex()},
		{Type: models.NotificationMention, SenderID: "s", ReceiverID: "u2", ItemModel: post.Model, ItemDocument: post.Document.Hex()},
		{Type: models.NotificationMention, SenderID: "s", ReceiverID: "u1", ItemModel: other.Model, ItemDocument: other.Document.Hex()},
		{Type: models.NotificationComment, SenderID: "s", ReceiverID: "u1", ItemModel: post.Model, ItemDocument: post.Document.Hex()},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	n, err := repo.Delete(ctx, models.NotificationFilter{Type: models.NotificationMention, ReceiverID: "u1", Item: post})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	n, err = repo.Delete(ctx, models.NotificationFilter{Type: models.NotificationMention, ReceiverID: "nobody"})
	if err != nil || n != 0 {
		t.Errorf("expected zero matches without error, got %d, %v", n, err)
	}

	n, _ = repo.Delete(ctx, models.NotificationFilter{})
	if n != 0 {
		t.Errorf("empty filter must not delete, deleted %d", n)
	}

	list, total, err := repo.ListByReceiver(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("expected 2 remaining for u1, got total=%d len=%d", total, len(list))
	}
}

func TestNotificationReadState(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(newTestDB(t))

	a := models.Notification{Type: models.NotificationRequest, SenderID: "s", ReceiverID: "u1"}
	b := models.Notification{Type: models.NotificationAccept, SenderID: "s", ReceiverID: "u1"}
	_ = repo.Create(ctx, &a)
	_ = repo.Create(ctx, &b)

	if c, _ := repo.UnreadCount(ctx, "u1"); c != 2 {
		t.Fatalf("expected 2 unread, got %d", c)
	}
	if err := repo.MarkAsRead(ctx, a.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign receiver, got %v", err)
	}
	if err := repo.MarkAsRead(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if c, _ := repo.UnreadCount(ctx, "u1"); c != 1 {
		t.Errorf("expected 1 unread, got %d", c)
	}
	if err := repo.MarkAllAsRead(ctx, "u1"); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if c, _ := repo.UnreadCount(ctx, "u1"); c != 0 {
		t.Errorf("expected 0 unread, got %d", c)
	}
}

func TestNotificationPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(newTestDB(t))

	for i := 0; i < models.PageSize+5; i++ {
		if err := repo.Create(ctx, &models.Notification{Type: models.NotificationReaction, SenderID: "s", ReceiverID: "u1"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	first, total, _ := repo.ListByReceiver(ctx, "u1", 1)
	second, _, _ := repo.ListByReceiver(ctx, "u1", 2)
	if total != int64(models.PageSize+5) {
		t.Errorf("unexpected total %d", total)
	}
	if len(first) != models.PageSize || len(second) != 5 {
		t.Errorf("unexpected page sizes %d and %d", len(first), len(second))
	}
}

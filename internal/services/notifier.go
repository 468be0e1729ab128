package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/i18n"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/push"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/pkg/logger"
)

const pushTimeout = 10 * time.Second

// NotifyOptions tunes a single Notify call.
type NotifyOptions struct {
	Push bool
	// Detail is the parent model of a comment or the type of a reaction.
	Detail string
}

// Notifier persists notifications and fans them out to the receiver's
// devices. Push is at most one attempt per session and never fails the caller.
type Notifier struct {
	notifications repositories.NotificationRepository
	sessions      repositories.SessionRepository
	accounts      repositories.AccountRepository
	pusher        push.Pusher
	wg            sync.WaitGroup
}

// NewNotifier creates a Notifier. A nil pusher disables push delivery.
func NewNotifier(
	notifications repositories.NotificationRepository,
	sessions repositories.SessionRepository,
	accounts repositories.AccountRepository,
	pusher push.Pusher,
) *Notifier {
	return &Notifier{notifications: notifications, sessions: sessions, accounts: accounts, pusher: pusher}
}

// Notify stores a notification and, when requested, pushes it in the
// background. Notifying oneself is a no-op that returns nil, nil.
func (n *Notifier) Notify(
	ctx context.Context,
	typ models.NotificationType,
	sender, receiver primitive.ObjectID,
	item models.ItemRef,
	opts NotifyOptions,
) (*models.Notification, error) {
	if sender == receiver {
		return nil, nil
	}

	notification := &models.Notification{
		Type:       typ,
		SenderID:   sender.Hex(),
		ReceiverID: receiver.Hex(),
		ItemModel:  item.Model,
		Detail:     opts.Detail,
	}
	if !item.Document.IsZero() {
		notification.ItemDocument = item.Document.Hex()
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return nil, errs.Upstream(err, "Failed to create notification")
	}

	if opts.Push {
		n.dispatch(ctx, typ, sender, receiver, paramsFor(notification))
	}
	return notification, nil
}

// PushOnly pushes without storing a notification, as done for chat messages.
func (n *Notifier) PushOnly(ctx context.Context, typ models.NotificationType, sender, receiver primitive.ObjectID) {
	if sender == receiver {
		return
	}
	n.dispatch(ctx, typ, sender, receiver, i18n.Params{})
}

// Remove deletes the notifications matching filter. No match is not an error.
func (n *Notifier) Remove(ctx context.Context, filter models.NotificationFilter) error {
	if _, err := n.notifications.Delete(ctx, filter); err != nil {
		return errs.Upstream(err, "Failed to remove notifications")
	}
	return nil
}

// Forget deletes every notification sent or received by account.
func (n *Notifier) Forget(ctx context.Context, account primitive.ObjectID) error {
	if err := n.notifications.DeleteByAccount(ctx, account.Hex()); err != nil {
		return errs.Upstream(err, "Failed to remove notifications")
	}
	return nil
}

func (n *Notifier) dispatch(ctx context.Context, typ models.NotificationType, sender, receiver primitive.ObjectID, params i18n.Params) {
	if n.pusher == nil {
		return
	}
	// the request context is cancelled once the response is written
	bg := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.fanOut(bg, typ, sender, receiver, params)
	}()
}

func (n *Notifier) fanOut(ctx context.Context, typ models.NotificationType, sender, receiver primitive.ObjectID, params i18n.Params) {
	l := logger.Ctx(ctx).With().
		Str("type", string(typ)).
		Str("receiver_id", receiver.Hex()).
		Logger()

	lang := models.LanguageEnglish
	if acc, err := n.accounts.GetByID(ctx, receiver); err == nil && acc.Language != "" {
		lang = acc.Language
	}
	if acc, err := n.accounts.GetByID(ctx, sender); err == nil {
		params.Sender = acc.Name.Full()
	}
	text := i18n.Render(lang, typ, params)

	sessions, err := n.sessions.ListByAccount(ctx, receiver.Hex())
	if err != nil {
		l.Warn().Err(err).Msg("failed to load sessions for push")
		return
	}
	for _, s := range sessions {
		if s.RegistrationToken == "" {
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := n.pusher.SendToDevice(sendCtx, s.RegistrationToken, text.Title, text.Body); err != nil {
			l.Warn().Err(err).Uint("session_id", s.ID).Msg("push delivery failed")
		}
		cancel()
	}
}

// Wait blocks until in-flight pushes finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func paramsFor(n *models.Notification) i18n.Params {
	p := i18n.Params{Model: n.ItemModel}
	switch n.Type {
	case models.NotificationComment:
		if n.Detail != "" {
			p.Model = models.ItemModel(n.Detail)
		}
	case models.NotificationReaction:
		p.Action = n.Detail
	}
	return p
}

// List returns the receiver's notifications localized in its language.
func (n *Notifier) List(ctx context.Context, receiver *models.Account, page int) ([]models.NotificationView, int64, error) {
	list, total, err := n.notifications.ListByReceiver(ctx, receiver.ID.Hex(), page)
	if err != nil {
		return nil, 0, errs.Upstream(err, "Failed to list notifications")
	}

	senderIDs := make([]primitive.ObjectID, 0, len(list))
	for _, item := range list {
		if id, err := primitive.ObjectIDFromHex(item.SenderID); err == nil {
			senderIDs = append(senderIDs, id)
		}
	}
	senders, err := n.accounts.GetMany(ctx, senderIDs)
	if err != nil {
		return nil, 0, errs.Upstream(err, "Failed to load senders")
	}
	byID := make(map[string]models.AccountCompact, len(senders))
	for i := range senders {
		byID[senders[i].ID.Hex()] = senders[i].ToCompact()
	}

	views := make([]models.NotificationView, 0, len(list))
	for i := range list {
		params := paramsFor(&list[i])
		view := models.NotificationView{Notification: list[i]}
		if s, ok := byID[list[i].SenderID]; ok {
			view.Sender = &s
			params.Sender = s.Name
		}
		text := i18n.Render(receiver.Language, list[i].Type, params)
		view.Title, view.Body = text.Title, text.Body
		views = append(views, view)
	}
	return views, total, nil
}

func (n *Notifier) UnreadCount(ctx context.Context, receiver primitive.ObjectID) (int64, error) {
	c, err := n.notifications.UnreadCount(ctx, receiver.Hex())
	return c, storeErr(err, "")
}

func (n *Notifier) MarkAsRead(ctx context.Context, receiver primitive.ObjectID, id uint) error {
	return storeErr(n.notifications.MarkAsRead(ctx, id, receiver.Hex()), "Notification not found")
}

func (n *Notifier) MarkAllAsRead(ctx context.Context, receiver primitive.ObjectID) error {
	return storeErr(n.notifications.MarkAllAsRead(ctx, receiver.Hex()), "")
}

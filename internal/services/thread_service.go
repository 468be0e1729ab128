package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// ThreadService manages group chats over a fixed member set.
type ThreadService struct {
	threads  repositories.ThreadRepository
	messages repositories.MessageRepository
	events   repositories.EventRepository
	accounts repositories.AccountRepository
	notifier *Notifier
}

func NewThreadService(
	threads repositories.ThreadRepository,
	messages repositories.MessageRepository,
	events repositories.EventRepository,
	accounts repositories.AccountRepository,
	notifier *Notifier,
) *ThreadService {
	return &ThreadService{threads: threads, messages: messages, events: events, accounts: accounts, notifier: notifier}
}

// ThreadView is a thread with its members' profiles.
type ThreadView struct {
	models.Thread
	Members []models.AccountCompact `json:"members"`
}

func threadResource(t *models.Thread) policy.Resource {
	return policy.Resource{Kind: policy.KindThread, Members: t.Users}
}

// member loads a thread and checks that caller may perform action on it.
func (s *ThreadService) member(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, action policy.Action) (*models.Thread, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Thread not found")
	}
	if err := policy.Can(caller, action, threadResource(thread)); err != nil {
		return nil, err
	}
	return thread, nil
}

// List returns the threads caller belongs to.
func (s *ThreadService) List(ctx context.Context, caller *policy.Caller, page int) ([]ThreadView, error) {
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindThread}); err != nil {
		return nil, err
	}
	threads, err := s.threads.ListByMember(ctx, caller.ID, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list threads")
	}
	var ids []primitive.ObjectID
	for _, t := range threads {
		ids = append(ids, t.Users...)
	}
	profiles, err := compacts(ctx, s.accounts, ids)
	if err != nil {
		return nil, err
	}
	views := make([]ThreadView, 0, len(threads))
	for _, t := range threads {
		v := ThreadView{Thread: t, Members: make([]models.AccountCompact, 0, len(t.Users))}
		for _, u := range t.Users {
			if p, ok := profiles[u]; ok {
				v.Members = append(v.Members, p)
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// Create opens a thread between caller and req.Users with a first message.
// A thread with exactly the same members is reused.
func (s *ThreadService) Create(ctx context.Context, caller *policy.Caller, req models.CreateThreadRequest) (*models.Thread, *models.Message, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindThread}); err != nil {
		return nil, nil, err
	}
	others, err := models.ParseIDs(req.Users)
	if err != nil {
		return nil, nil, errs.Validation("Invalid user ID")
	}
	members := []primitive.ObjectID{caller.ID}
	for _, id := range others {
		if id != caller.ID {
			members = append(members, id)
		}
	}
	if len(members) < 2 {
		return nil, nil, errs.Validation("A thread needs at least 2 members")
	}
	found, err := s.accounts.GetMany(ctx, members)
	if err != nil {
		return nil, nil, errs.Upstream(err, "Failed to load members")
	}
	if len(found) != len(members) {
		return nil, nil, errs.NotFound("Member not found")
	}

	thread, err := s.threads.FindByMembers(ctx, members)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		thread = &models.Thread{Users: members, Title: strings.TrimSpace(req.Title)}
		if err := s.threads.Create(ctx, thread); err != nil {
			return nil, nil, errs.Upstream(err, "Failed to create thread")
		}
	default:
		return nil, nil, errs.Upstream(err, "Failed to find thread")
	}

	message, err := s.send(ctx, caller, thread, req.Text)
	if err != nil {
		return nil, nil, err
	}
	return thread, message, nil
}

// Get returns a thread caller belongs to.
func (s *ThreadService) Get(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Thread, error) {
	return s.member(ctx, caller, id, policy.ActionRead)
}

// Rename sets the title of a thread.
func (s *ThreadService) Rename(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, title string) (*models.Thread, error) {
	thread, err := s.member(ctx, caller, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	thread.Title = strings.TrimSpace(title)
	if err := s.threads.SetTitle(ctx, id, thread.Title); err != nil {
		return nil, storeErr(err, "Thread not found")
	}
	return thread, nil
}

// Delete removes a thread with its messages and events.
func (s *ThreadService) Delete(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	if _, err := s.member(ctx, caller, id, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.threads.Delete(ctx, id); err != nil {
		return storeErr(err, "Thread not found")
	}
	l := logger.Ctx(ctx)
	if err := s.messages.DeleteByThread(ctx, id); err != nil {
		l.Warn().Err(err).Str("thread_id", id.Hex()).Msg("failed to delete thread messages")
	}
	if err := s.events.DeleteByThread(ctx, id); err != nil {
		l.Warn().Err(err).Str("thread_id", id.Hex()).Msg("failed to delete thread events")
	}
	return nil
}

// Messages returns messages of a thread, newest first.
func (s *ThreadService) Messages(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, page int) ([]models.Message, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Thread not found")
	}
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindMessage, Members: thread.Users}); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByThread(ctx, id, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list messages")
	}
	return messages, nil
}

// SendMessage posts text to a thread and pushes it to the other members.
func (s *ThreadService) SendMessage(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, text string) (*models.Message, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Thread not found")
	}
	return s.send(ctx, caller, thread, text)
}

func (s *ThreadService) send(ctx context.Context, caller *policy.Caller, thread *models.Thread, text string) (*models.Message, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindMessage, Members: thread.Users}); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.Validation("Text is required")
	}
	message := &models.Message{Thread: thread.ID, User: caller.ID, Text: text}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, errs.Upstream(err, "Failed to send message")
	}
	if err := s.threads.Touch(ctx, thread.ID); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("thread_id", thread.ID.Hex()).Msg("failed to touch thread")
	}
	for _, u := range thread.Users {
		s.notifier.PushOnly(ctx, models.NotificationMessage, caller.ID, u)
	}
	return message, nil
}

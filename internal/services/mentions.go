package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/repositories"
)

// DiffMentions returns the ids present in next but not prev, and the ids
// present in prev but not next. Duplicates are reported once.
func DiffMentions(prev, next []primitive.ObjectID) (added, removed []primitive.ObjectID) {
	before := make(map[primitive.ObjectID]bool, len(prev))
	for _, id := range prev {
		before[id] = true
	}
	after := make(map[primitive.ObjectID]bool, len(next))
	for _, id := range next {
		if after[id] {
			continue
		}
		after[id] = true
		if !before[id] {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if before[id] && !after[id] {
			removed = append(removed, id)
			before[id] = false
		}
	}
	return added, removed
}

// SyncMentions notifies every newly mentioned account once and withdraws
// the mention notification of every account no longer mentioned.
func (n *Notifier) SyncMentions(ctx context.Context, sender primitive.ObjectID, item models.ItemRef, prev, next []primitive.ObjectID) error {
	added, removed := DiffMentions(prev, next)
	for _, id := range added {
		if _, err := n.Notify(ctx, models.NotificationMention, sender, id, item, NotifyOptions{Push: true}); err != nil {
			return err
		}
	}
	for _, id := range removed {
		err := n.Remove(ctx, models.NotificationFilter{
			Type:       models.NotificationMention,
			ReceiverID: id.Hex(),
			Item:       item,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// parseMentions validates mention ids and checks that the accounts exist.
func parseMentions(ctx context.Context, accounts repositories.AccountRepository, hexes []string) ([]primitive.ObjectID, error) {
	ids, err := models.ParseIDs(hexes)
	if err != nil {
		return nil, errs.Validation("Invalid mention ID")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := accounts.GetMany(ctx, ids)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load mentioned accounts")
	}
	if len(found) != len(ids) {
		return nil, errs.Validation("Mentioned account not found")
	}
	return ids, nil
}

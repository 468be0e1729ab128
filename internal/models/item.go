package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PageSize is the fixed number of documents returned per page.
const PageSize = 20

// ItemModel names the collection an ItemRef points into.
type ItemModel string

const (
	ItemPost    ItemModel = "Post"
	ItemReview  ItemModel = "Review"
	ItemComment ItemModel = "Comment"
	ItemFollow  ItemModel = "Follow"
	ItemEvent   ItemModel = "Event"
	ItemThread  ItemModel = "Thread"
)

// Valid reports whether m is a known item model.
func (m ItemModel) Valid() bool {
	switch m {
	case ItemPost, ItemReview, ItemComment, ItemFollow, ItemEvent, ItemThread:
		return true
	}
	return false
}

// Reactable reports whether reactions and comments may target m.
func (m ItemModel) Reactable() bool {
	return m == ItemPost || m == ItemReview || m == ItemComment
}

// ItemRef is a polymorphic reference to another document.
type ItemRef struct {
	Model    ItemModel          `json:"model" bson:"model"`
	Document primitive.ObjectID `json:"document" bson:"document"`
}

// IsZero reports whether the reference is unset.
func (r ItemRef) IsZero() bool {
	return r.Model == "" && r.Document.IsZero()
}

// ItemRefRequest is the wire form of an ItemRef.
type ItemRefRequest struct {
	Model    string `json:"model" validate:"required,oneof=Post Review Comment"`
	Document string `json:"document" validate:"required,mongodb"`
}

// Ref converts the request into an ItemRef. The document id must already be validated.
func (r ItemRefRequest) Ref() ItemRef {
	id, _ := primitive.ObjectIDFromHex(r.Document)
	return ItemRef{Model: ItemModel(r.Model), Document: id}
}

// ParseIDs converts hex strings into object ids, dropping duplicates.
func ParseIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	seen := make(map[primitive.ObjectID]struct{}, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

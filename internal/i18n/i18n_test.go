package i18n

import (
	"testing"

	"github.com/goer-app/goer/backend/internal/models"
)

func TestRender(t *testing.T) {
	tests := []struct {
		lang  string
		typ   models.NotificationType
		p     Params
		title string
		body  string
	}{
		{"en", models.NotificationRequest, Params{Sender: "Ann"}, "New Follow Request", "Ann requested to follow you"},
		{"en", models.NotificationReaction, Params{Sender: "Ann", Model: models.ItemReview, Action: "like"}, "New Reaction", "Ann liked your review"},
		{"en", models.NotificationComment, Params{Sender: "Ann", Model: models.ItemPost}, "New Comment", "Ann commented on your post"},
		{"in", models.NotificationMention, Params{Sender: "Ann", Model: models.ItemComment}, "Disebut", "Ann menyebut Anda dalam komentar"},
		{"fr", models.NotificationAccept, Params{Sender: "Ann"}, "Follow Accepted", "Ann accepted your follow request"},
	}
	for _, tt := range tests {
		got := Render(tt.lang, tt.typ, tt.p)
		if got.Title != tt.title || got.Body != tt.body {
			t.Errorf("Render(%s, %s) = %+v, want %q / %q", tt.lang, tt.typ, got, tt.title, tt.body)
		}
	}
}

func TestEveryTypeHasBothLanguages(t *testing.T) {
	types := []models.NotificationType{
		models.NotificationRequest, models.NotificationAccept, models.NotificationReaction,
		models.NotificationReview, models.NotificationComment, models.NotificationMention,
		models.NotificationMessage,
	}
	for lang, catalog := range catalogs {
		for _, typ := range types {
			if _, ok := catalog[typ]; !ok {
				t.Errorf("%s is missing %s", lang, typ)
			}
		}
	}
}

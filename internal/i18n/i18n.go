// Package i18n renders localized notification texts.
package i18n

import (
	"strings"

	"github.com/goer-app/goer/backend/internal/models"
)

// Params fills the notification templates.
type Params struct {
	Sender string           // display name of the actor
	Model  models.ItemModel // item the notification is about
	Action string           // reaction type for reactions
}

// Text is a rendered notification.
type Text struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type template struct {
	title string
	body  func(p Params) string
}

var catalogs = map[string]map[models.NotificationType]template{
	models.LanguageEnglish: {
		models.NotificationRequest: {"New Follow Request", func(p Params) string {
			return p.Sender + " requested to follow you"
		}},
		models.NotificationAccept: {"Follow Accepted", func(p Params) string {
			return p.Sender + " accepted your follow request"
		}},
		models.NotificationReaction: {"New Reaction", func(p Params) string {
			return p.Sender + " " + p.Action + "d your " + item(p.Model)
		}},
		models.NotificationReview: {"New Review", func(p Params) string {
			return p.Sender + " added a review to your business"
		}},
		models.NotificationComment: {"New Comment", func(p Params) string {
			return p.Sender + " commented on your " + item(p.Model)
		}},
		models.NotificationMention: {"New Mention", func(p Params) string {
			return p.Sender + " mentioned you in a " + item(p.Model)
		}},
		models.NotificationMessage: {"New Message", func(p Params) string {
			return p.Sender + " sent you a message"
		}},
	},
	models.LanguageIndonesian: {
		models.NotificationRequest: {"Permintaan Mengikuti", func(p Params) string {
			return p.Sender + " meminta untuk mengikuti Anda"
		}},
		models.NotificationAccept: {"Permintaan Diterima", func(p Params) string {
			return p.Sender + " menerima permintaan mengikuti Anda"
		}},
		models.NotificationReaction: {"Reaksi Baru", func(p Params) string {
			verb := "menyukai"
			if p.Action == string(models.ReactionDislike) {
				verb = "tidak menyukai"
			}
			return p.Sender + " " + verb + " " + itemID(p.Model) + " Anda"
		}},
		models.NotificationReview: {"Ulasan Baru", func(p Params) string {
			return p.Sender + " menambahkan ulasan untuk bisnis Anda"
		}},
		models.NotificationComment: {"Komentar Baru", func(p Params) string {
			return p.Sender + " mengomentari " + itemID(p.Model) + " Anda"
		}},
		models.NotificationMention: {"Disebut", func(p Params) string {
			return p.Sender + " menyebut Anda dalam " + itemID(p.Model)
		}},
		models.NotificationMessage: {"Pesan Baru", func(p Params) string {
			return p.Sender + " mengirimi Anda pesan"
		}},
	},
}

func item(m models.ItemModel) string {
	if m == "" {
		return "post"
	}
	return strings.ToLower(string(m))
}

var indonesianItems = map[models.ItemModel]string{
	models.ItemPost:    "kiriman",
	models.ItemReview:  "ulasan",
	models.ItemComment: "komentar",
	models.ItemEvent:   "acara",
}

func itemID(m models.ItemModel) string {
	if s, ok := indonesianItems[m]; ok {
		return s
	}
	return "kiriman"
}

// Render returns the text for t in lang, falling back to English for
// unknown languages.
func Render(lang string, t models.NotificationType, p Params) Text {
	catalog, ok := catalogs[lang]
	if !ok {
		catalog = catalogs[models.LanguageEnglish]
	}
	tpl, ok := catalog[t]
	if !ok {
		return Text{Title: string(t)}
	}
	return Text{Title: tpl.title, Body: tpl.body(p)}
}

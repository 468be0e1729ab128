package mailer

import (
	"fmt"
	"html"
)

// Confirmation is the sign-up confirmation code email.
func Confirmation(to, name, code string) Email {
	return Email{
		To:      to,
		Subject: "Confirm your Goer account",
		Text:    fmt.Sprintf("Hi %s,\n\nYour confirmation code is %s.\n", name, code),
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>Your confirmation code is <b>%s</b>.</p>", html.EscapeString(name), code),
	}
}

// PasswordReset carries a newly generated password.
func PasswordReset(to, name, password string) Email {
	return Email{
		To:      to,
		Subject: "Your new Goer password",
		Text:    fmt.Sprintf("Hi %s,\n\nYour password has been reset to %s. Please change it after signing in.\n", name, password),
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>Your password has been reset to <b>%s</b>. Please change it after signing in.</p>", html.EscapeString(name), password),
	}
}

// Contact relays a user's message to a business.
func Contact(to, replyTo, from, subject, text string) Email {
	return Email{
		To:      to,
		ReplyTo: replyTo,
		Subject: subject,
		Text:    fmt.Sprintf("Message from %s <%s>:\n\n%s\n", from, replyTo, text),
	}
}

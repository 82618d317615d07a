package mailer

import (
	"fmt"
	"html"
	"time"
)

func OTPEmail(to, code string, ttl time.Duration) Email {
	minutes := int(ttl.Minutes())
	return Email{
		ToEmail: to,
		Subject: "Your verification code",
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes),
		HTML:    fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p><p>It expires in %d minutes.</p>", html.EscapeString(code), minutes),
	}
}

func PasswordResetEmail(to, code string, ttl time.Duration) Email {
	minutes := int(ttl.Minutes())
	return Email{
		ToEmail: to,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Use code %s to reset your password. It expires in %d minutes. Ignore this message if you did not ask for a reset.", code, minutes),
		HTML:    fmt.Sprintf("<p>Use code <b>%s</b> to reset your password.</p><p>It expires in %d minutes. Ignore this message if you did not ask for a reset.</p>", html.EscapeString(code), minutes),
	}
}

func WelcomeEmail(to, name string) Email {
	return Email{
		ToEmail: to,
		ToName:  name,
		Subject: "Welcome to Rentals",
		Text:    fmt.Sprintf("Hi %s, your account is ready.", name),
		HTML:    fmt.Sprintf("<p>Hi %s, your account is ready.</p>", html.EscapeString(name)),
	}
}

func BookingEmail(to, name, subject, body string) Email {
	return Email{
		ToEmail: to,
		ToName:  name,
		Subject: subject,
		Text:    fmt.Sprintf("Hi %s,\n\n%s", name, body),
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", html.EscapeString(name), html.EscapeString(body)),
	}
}

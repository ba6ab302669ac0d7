package mailer

import (
	"fmt"
	"time"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for the notify
// worker. Text is the plain body; HTML is optional.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// RegistrationConfirmed builds the job sent after a successful event
// registration.
func RegistrationConfirmed(to, username, eventTitle string, startDate time.Time) EmailJob {
	return EmailJob{
		To:      to,
		Subject: fmt.Sprintf("Registration confirmed: %s", eventTitle),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYou are registered for %q starting %s.\n\nSee you there!\nEventSphere",
			username, eventTitle, startDate.Format("02 January 2006, 15:04 MST"),
		),
	}
}

// EventCancelled builds the job sent to each attendee when an owner deletes
// an event they were registered for.
func EventCancelled(to, username, eventTitle string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: fmt.Sprintf("Event cancelled: %s", eventTitle),
		Text: fmt.Sprintf(
			"Hi %s,\n\nThe event %q has been cancelled by its organizer. Your registration was removed.\n\nEventSphere",
			username, eventTitle,
		),
	}
}

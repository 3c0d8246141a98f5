package message

import "context"

// Message is an outgoing message handed to a Sender.
type Message struct {
	To      string
	Subject string
	Body    string
	Html    bool
}

// Incoming is a message fetched by a Reader.
type Incoming struct {
	From    string
	Subject string
	Body    string
}

// Sender delivers outgoing messages. The production implementation is an
// SMTP-style relay; the core depends on the interface only.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Reader fetches unread incoming messages, IMAP-style.
type Reader interface {
	Fetch(ctx context.Context) ([]Incoming, error)
}

package chathub

import "tipsy/backend/internal/models"

// Client is one live connection to a chat session, independent of the
// transport behind it. The hub manages every client through this
// interface only.
type Client interface {
	// GetUserID returns the anonymous display id of the connected
	// user.
	GetUserID() string
	// GetSessionID returns the chat session (= report) the client
	// joined.
	GetSessionID() string

	// GetSendChannel returns the channel the hub pushes outbound
	// messages into.
	GetSendChannel() chan<- models.ChatMessage

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the client down and releases its send channel.
	Close()
}

// Package notification defines the outbound customer notification port.
package notification

import "context"

// Channel names understood by the host notification provider.
const (
	ChannelEmail = "email"
)

// Message is one notification to deliver.
type Message struct {
	To       string
	Channel  string
	Template string
	Data     map[string]any
}

// Sender delivers notifications through the host platform.
type Sender interface {
	Send(ctx context.Context, messages ...Message) error
}

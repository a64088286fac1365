package host

import (
	"context"
	"net/http"

	"github.com/warawul/backend/internal/domain/notification"
)

// Notifier sends customer notifications through the host platform
type Notifier struct {
	client *Client
}

var _ notification.Sender = (*Notifier)(nil)

// NewNotifier creates a notification sender on top of an existing host client
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Send delivers the given notifications one by one. The first failure aborts
// the batch.
func (n *Notifier) Send(ctx context.Context, messages ...notification.Message) error {
	for _, message := range messages {
		body := notificationBody{
			To:       message.To,
			Channel:  message.Channel,
			Template: message.Template,
			Data:     message.Data,
		}
		if _, err := n.client.doRequest(ctx, http.MethodPost, "/admin/notifications", body, nil); err != nil {
			return err
		}
	}
	return nil
}

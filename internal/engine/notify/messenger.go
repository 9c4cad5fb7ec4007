package notify

import "context"

// Messenger delivers a private message to a user, out of band from the
// command transport. Implementations live with the chat platform; the
// registry only depends on this interface. A closed channel surfaces as
// errors.ErrUnreachable.
type Messenger interface {
	SendPrivateMessage(ctx context.Context, userID, text string) error
}

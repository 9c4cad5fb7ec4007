package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ConsoleMessenger logs deliveries instead of sending them. Development
// stand-in for the chat platform's private-message channel; secrets
// passed here end up in the log, so never wire it in production.
type ConsoleMessenger struct{}

func NewConsoleMessenger() *ConsoleMessenger {
	return &ConsoleMessenger{}
}

func (m *ConsoleMessenger) SendPrivateMessage(ctx context.Context, userID, text string) error {
	log.Info().Str("user_id", userID).Msg("private message (console): " + text)
	return nil
}

package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram is a notify service that delivers to a fixed set of chats. A chat
// that fails does not stop the delivery to the others.
type Telegram struct {
	client    Sender
	chatIDs   []int64
	delivered []int64
	failure   *DeliveryError
}

// DeliveryError lists the chats a message could not be delivered to.
type DeliveryError struct {
	Failed map[int64]error
}

func (e *DeliveryError) Error() string {
	chatIDs := make([]int64, 0, len(e.Failed))
	for chatID := range e.Failed {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })

	msgs := make([]string, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		msgs = append(msgs, fmt.Sprintf("chat %d: %s", chatID, e.Failed[chatID]))
	}
	return fmt.Sprintf("failed to deliver to %d chats: %s", len(chatIDs), strings.Join(msgs, "; "))
}

func (t *Telegram) SetClient(client Sender) {
	t.client = client
}

func (t *Telegram) AddReceivers(chatIDs ...int64) {
	t.chatIDs = append(t.chatIDs, chatIDs...)
}

// Delivered returns the chats that received the last message.
func (t *Telegram) Delivered() []int64 {
	return t.delivered
}

// Failure returns the per-chat errors of the last message, nil when every
// chat received it.
func (t *Telegram) Failure() *DeliveryError {
	return t.failure
}

func (t *Telegram) Send(ctx context.Context, subject, message string) error {
	if t.client == nil {
		return errors.New("telegram client not set")
	}
	t.delivered = nil
	t.failure = nil
	failed := map[int64]error{}
	text := subject + "\n" + message
	for _, chatID := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			failed[chatID] = err
			continue
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.client.Send(msg); err != nil {
			failed[chatID] = err
			continue
		}
		t.delivered = append(t.delivered, chatID)
	}
	if len(failed) > 0 {
		t.failure = &DeliveryError{Failed: failed}
		return t.failure
	}
	return nil
}

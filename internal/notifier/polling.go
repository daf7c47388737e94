package notifier

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// CommandHandler answers a normalised chat command such as "/sale".
type CommandHandler func(command string) string

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

const pollTimeoutSeconds = 30

// ParseCommand extracts the command word from a message, dropping any
// "@botname" suffix and arguments. ok is false for plain text.
func ParseCommand(text string) (command string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	command, _, _ = strings.Cut(fields[0], "@")
	return strings.ToLower(command), true
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	var updates []telegramUpdate
	err := t.call(ctx, client, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         pollTimeoutSeconds,
		"allowed_updates": []string{"message"},
	}, &updates)
	return updates, err
}

// StartPolling long-polls for commands sent in the configured chat and
// replies there. Messages from other chats are ignored. Blocks until ctx is
// cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := &http.Client{Timeout: (pollTimeoutSeconds + 5) * time.Second, Transport: t.Client.Transport}
	offset := 0
	for {
		updates, err := t.getUpdates(ctx, client, offset)
		if ctx.Err() != nil {
			log.Info("telegram polling stopped")
			return
		}
		if err != nil {
			log.WithError(err).Warn("telegram polling failed")
			sleep(ctx, 5*time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			t.dispatch(ctx, u, handler)
		}
	}
}

func (t *TelegramNotifier) dispatch(ctx context.Context, u telegramUpdate, handler CommandHandler) {
	if u.Message == nil || strconv.FormatInt(u.Message.Chat.ID, 10) != t.ChatID {
		return
	}
	command, ok := ParseCommand(u.Message.Text)
	if !ok {
		return
	}
	log.WithField("command", command).Info("received command")
	if reply := handler(command); reply != "" {
		if err := t.Send(ctx, reply); err != nil {
			log.WithError(err).Error("send reply")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

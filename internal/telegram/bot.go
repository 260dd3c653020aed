// Package telegram adapts Telegram updates to conversation events and
// renders the engine's replies back into chat messages.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"boxbot/internal/conversation"
)

// Engine is the conversation side of the adapter.
type Engine interface {
	Handle(ctx context.Context, ev conversation.Event) ([]conversation.Reply, error)
}

type Bot struct {
	api            *tgbotapi.BotAPI
	engine         Engine
	limiter        *ChatLimiter
	httpClient     *http.Client
	operatorChatID int64

	mu      sync.Mutex
	workers map[int64]chan tgbotapi.Update
}

func NewBot(api *tgbotapi.BotAPI, engine Engine, operatorChatID int64) *Bot {
	return &Bot{
		api:            api,
		engine:         engine,
		limiter:        NewChatLimiter(1, 5),
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		operatorChatID: operatorChatID,
		workers:        make(map[int64]chan tgbotapi.Update),
	}
}

// Run polls for updates until the context is cancelled. Updates are fanned
// out to one worker per chat: strict arrival order within a chat, full
// concurrency across chats.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.chatWorker(ctx, update.Message.Chat.ID) <- update
		}
	}
}

func (b *Bot) chatWorker(ctx context.Context, chatID int64) chan tgbotapi.Update {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.workers[chatID]
	if !ok {
		ch = make(chan tgbotapi.Update, 16)
		b.workers[chatID] = ch
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case update := <-ch:
					b.handleUpdate(ctx, update)
				}
			}
		}()
	}
	return ch
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if !b.limiter.Allow(msg.Chat.ID) {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Easy! One message at a time, please."))
		return
	}

	replies, err := b.engine.Handle(ctx, b.toEvent(msg))
	if err != nil {
		b.reportFault(msg, err)
		return
	}
	for _, reply := range replies {
		b.sendReply(msg.Chat.ID, reply)
	}
}

func (b *Bot) toEvent(msg *tgbotapi.Message) conversation.Event {
	ev := conversation.Event{
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.From != nil {
		ev.UserID = msg.From.ID
	}
	if msg.IsCommand() {
		ev.Command = msg.Command()
		ev.Args = msg.CommandArguments()
		ev.Text = ""
		return ev
	}
	if len(msg.Photo) > 0 {
		// Last entry is the largest rendition.
		photo, err := b.downloadFile(msg.Photo[len(msg.Photo)-1].FileID)
		if err != nil {
			log.Printf("telegram: downloading photo for chat %d: %v", msg.Chat.ID, err)
			ev.PhotoFailed = true
			return ev
		}
		ev.Photo = photo
	}
	return ev
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) sendReply(chatID int64, reply conversation.Reply) {
	if reply.Photo != nil {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "cover.jpg", Bytes: reply.Photo})
		b.send(photo)
		return
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch {
	case len(reply.Keyboard) > 0:
		buttons := make([]tgbotapi.KeyboardButton, 0, len(reply.Keyboard))
		for _, option := range reply.Keyboard {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(option))
		}
		msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(buttons)
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("telegram: sending message: %v", err)
	}
}

// reportFault logs an unrecovered engine fault and notifies the operator
// chat. Other chats keep running.
func (b *Bot) reportFault(msg *tgbotapi.Message, err error) {
	log.Printf("telegram: error handling update for chat %d: %v", msg.Chat.ID, err)
	if b.operatorChatID == 0 {
		return
	}
	text := fmt.Sprintf("An error occurred while handling an update\nchat: %d\nmessage: %q\nerror: %v",
		msg.Chat.ID, msg.Text, err)
	b.send(tgbotapi.NewMessage(b.operatorChatID, text))
}

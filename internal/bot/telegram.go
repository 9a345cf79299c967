package bot

import (
	"context"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot connects the wizard engine to the Telegram Bot API over long polling.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *Engine
	log    *zap.Logger
}

// New creates the Telegram transport. The engine is attached afterwards via
// SetEngine so that the engine can use the bot as its Notifier.
func New(cfg config.BotConfig, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug
	return &Bot{api: api, log: log}, nil
}

// SetEngine attaches the wizard engine processing inbound updates.
func (b *Bot) SetEngine(engine *Engine) {
	b.engine = engine
}

// Notify implements Notifier: a plain out-of-band message to any chat.
func (b *Bot) Notify(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Run polls for updates until the context is canceled. Updates for a chat
// arrive sequentially, so each session sees one step at a time.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info("Starting bot polling", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	b.log.Info("Bot polling stopped")
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := b.eventFromUpdate(update)
	if !ok {
		return
	}

	for _, reply := range b.engine.HandleEvent(ctx, ev) {
		if err := b.send(ev.ChatID, reply); err != nil {
			b.log.Error("Failed to send reply",
				zap.Int64("chat_id", ev.ChatID),
				zap.Error(err),
			)
		}
	}
}

// eventFromUpdate reduces a raw update to an engine event, acknowledging
// callback queries so the client stops its spinner.
func (b *Bot) eventFromUpdate(update tgbotapi.Update) (Event, bool) {
	if cb := update.CallbackQuery; cb != nil && cb.Message != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn("Failed to ack callback", zap.Error(err))
		}
		action := ParseAction(cb.Data)
		return Event{
			ChatID:     cb.Message.Chat.ID,
			TelegramID: cb.From.ID,
			Username:   cb.From.UserName,
			Action:     &action,
		}, true
	}

	if msg := update.Message; msg != nil && msg.From != nil {
		return Event{
			ChatID:     msg.Chat.ID,
			TelegramID: msg.From.ID,
			Username:   msg.From.UserName,
			Text:       msg.Text,
		}, true
	}

	return Event{}, false
}

func (b *Bot) send(chatID int64, reply Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	switch {
	case len(reply.Inline) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Inline))
		for _, row := range reply.Inline {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, btn := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action.Data()))
			}
			rows = append(rows, buttons)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	case len(reply.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard))
		for _, row := range reply.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.OneTimeKeyboard = reply.OneTime
		keyboard.ResizeKeyboard = true
		msg.ReplyMarkup = keyboard
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	_, err := b.api.Send(msg)
	return err
}

// Package telegram adapts the Telegram Bot API to the bot's chat interfaces.
// It owns the update loop, translates updates into chat events, and delivers
// outgoing messages and inline keyboards.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/chat"
)

// Gateway wraps the Telegram client behind chat.Messenger, chat.Directory
// and chat.Downloader.
type Gateway struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
	logger *zap.Logger
}

// NewGateway authorizes against the Bot API.
func NewGateway(token string, logger *zap.Logger) (*Gateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}
	bot.Debug = false
	logger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	return &Gateway{
		bot:    bot,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}, nil
}

// Run receives updates until ctx is cancelled, routing each to the handler.
// Updates are dispatched sequentially so events for one conversation are
// never processed concurrently.
func (g *Gateway) Run(ctx context.Context, handler chat.Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := g.bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			g.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			g.dispatch(ctx, handler, update)
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, handler chat.Handler, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		event := chat.Callback{
			ID:   cb.ID,
			From: userOf(cb.From),
			Data: cb.Data,
		}
		if cb.Message != nil {
			event.ChatID = cb.Message.Chat.ID
			event.MessageID = cb.Message.MessageID
		}
		handler.HandleCallback(ctx, event)
	case update.Message != nil && update.Message.IsCommand():
		msg := update.Message
		handler.HandleCommand(ctx, chat.Command{
			From:    userOf(msg.From),
			ChatID:  msg.Chat.ID,
			Name:    msg.Command(),
			Args:    msg.CommandArguments(),
			Private: msg.Chat.IsPrivate(),
		})
	case update.Message != nil:
		msg := update.Message
		handler.HandleMessage(ctx, chat.Message{
			From:        userOf(msg.From),
			ChatID:      msg.Chat.ID,
			Text:        messageContent(msg),
			Attachments: g.extractAttachments(msg),
			Private:     msg.Chat.IsPrivate(),
		})
	}
}

// SendDirect delivers a private message. On Telegram the private chat id
// equals the user id.
func (g *Gateway) SendDirect(ctx context.Context, userID int64, text string) error {
	return g.Send(ctx, userID, text)
}

// Send posts a plain message to a chat.
func (g *Gateway) Send(ctx context.Context, chatID int64, text string) error {
	_, err := g.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendWithButtons posts a message with an inline keyboard and returns the
// message id for later edits.
func (g *Gateway) SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]chat.Button) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboardOf(rows)
	sent, err := g.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditButtons replaces the text and keyboard of a posted affordance.
func (g *Gateway) EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]chat.Button) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboardOf(rows))
	_, err := g.bot.Send(edit)
	return err
}

// AnswerCallback acknowledges a button press with a short notice visible
// only to the pressing user.
func (g *Gateway) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := g.bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// Members lists the administrators of a chat together with their custom
// titles, which stand in for guild roles.
func (g *Gateway) Members(ctx context.Context, chatID int64) ([]chat.Member, error) {
	admins, err := g.bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, err
	}
	members := make([]chat.Member, 0, len(admins))
	for _, admin := range admins {
		if admin.User == nil || admin.User.IsBot {
			continue
		}
		members = append(members, chat.Member{
			User:      userOf(admin.User),
			RoleTitle: admin.CustomTitle,
			IsAdmin:   true,
		})
	}
	return members, nil
}

// Download fetches attachment bytes from a Telegram file URL.
func (g *Gateway) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (g *Gateway) extractAttachments(msg *tgbotapi.Message) []chat.Attachment {
	var attachments []chat.Attachment
	if msg.Document != nil {
		url, err := g.bot.GetFileDirectURL(msg.Document.FileID)
		if err != nil {
			g.logger.Warn("resolve document url", zap.Error(err))
		} else {
			attachments = append(attachments, chat.Attachment{
				URL:         url,
				FileName:    msg.Document.FileName,
				ContentType: msg.Document.MimeType,
			})
		}
	}
	if len(msg.Photo) > 0 {
		// Telegram sends several sizes of the same photo; keep the largest.
		photo := msg.Photo[len(msg.Photo)-1]
		url, err := g.bot.GetFileDirectURL(photo.FileID)
		if err != nil {
			g.logger.Warn("resolve photo url", zap.Error(err))
		} else {
			attachments = append(attachments, chat.Attachment{
				URL:         url,
				FileName:    photo.FileUniqueID + ".jpg",
				ContentType: "image/jpeg",
			})
		}
	}
	return attachments
}

func messageContent(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func userOf(u *tgbotapi.User) chat.User {
	if u == nil {
		return chat.User{}
	}
	name := u.UserName
	if name == "" {
		name = u.FirstName
	}
	return chat.User{ID: u.ID, Name: name}
}

func keyboardOf(rows [][]chat.Button) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		keyboard = append(keyboard, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

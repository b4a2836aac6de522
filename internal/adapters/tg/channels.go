package tg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
)

var ErrRateLimited = errors.New("tdlib: too many requests")

// id супергруппы в chat_id TDLib: -100xxxxxxxxxx
const supergroupChatOffset = -1000000000000

func chatIDFromChannel(ch domain.ChannelReference) int64 {
	return supergroupChatOffset - ch.ID
}

func entityFromChat(chat *client.Chat) domain.Entity {
	e := domain.Entity{Title: chat.Title, ID: chat.Id}
	switch ct := chat.Type.(type) {
	case *client.ChatTypeSupergroup:
		e.ID = ct.SupergroupId
		e.Kind = domain.EntitySupergroup
		if ct.IsChannel {
			e.Kind = domain.EntityChannel
		}
	case *client.ChatTypeBasicGroup:
		e.ID = ct.BasicGroupId
		e.Kind = domain.EntityBasicGroup
	case *client.ChatTypePrivate:
		e.ID = ct.UserId
		e.Kind = domain.EntityUser
	case *client.ChatTypeSecret:
		e.ID = ct.UserId
		e.Kind = domain.EntityUser
	}
	return e
}

func messageFromTd(m *client.Message) domain.Message {
	msg := domain.Message{ID: m.Id, Date: m.Date}
	if txt, ok := m.Content.(*client.MessageText); ok && txt.Text != nil {
		msg.Text = txt.Text.Text
	}
	return msg
}

// ResolveUsername: TDLib отдаёт максимум один чат, поэтому кандидатов 0 или 1.
func (t *TelegramClient) ResolveUsername(ctx context.Context, username string) ([]domain.Entity, error) {
	if err := t.ready(ctx); err != nil {
		return nil, err
	}

	chat, err := t.client.SearchPublicChat(&client.SearchPublicChatRequest{
		Username: strings.TrimPrefix(username, "@"),
	})
	if err != nil {
		if isNotFound(err) {
			t.logger.Debug("username not found", "username", username, "error", err)
			return nil, nil
		}
		t.logger.Error("SearchPublicChat failed", "username", username, "error", err)
		return nil, classify(err)
	}

	return []domain.Entity{entityFromChat(chat)}, nil
}

func (t *TelegramClient) GetHistory(ctx context.Context, ch domain.ChannelReference, limit int32) ([]domain.Message, error) {
	if err := t.ready(ctx); err != nil {
		return nil, err
	}

	chatID := chatIDFromChannel(ch)
	history, err := t.client.GetChatHistory(&client.GetChatHistoryRequest{
		ChatId:        chatID,
		FromMessageId: 0,
		Offset:        0,
		Limit:         limit,
		OnlyLocal:     false,
	})
	if err != nil {
		t.logger.Error("GetChatHistory failed", "chat_id", chatID, "error", err)
		return nil, classify(err)
	}

	out := make([]domain.Message, 0, len(history.Messages))
	for _, m := range history.Messages {
		if m == nil {
			continue
		}
		out = append(out, messageFromTd(m))
	}
	return out, nil
}

// Report отправляет жалобу на сообщения канала. Новый reportChat интерактивный:
// сначала TDLib может попросить выбрать пункт меню, потом текст.
func (t *TelegramClient) Report(ctx context.Context, ch domain.ChannelReference, messageIDs []int64, reason domain.ReportReason, text string) (bool, error) {
	if err := t.ready(ctx); err != nil {
		return false, err
	}

	req := &client.ReportChatRequest{
		ChatId:     chatIDFromChannel(ch),
		MessageIds: messageIDs,
		Text:       text,
	}

	// меню жалоб не бывает глубже пары уровней
	for step := 0; step < 4; step++ {
		res, err := t.client.ReportChat(req)
		if err != nil {
			t.logger.Error("ReportChat failed", "chat_id", req.ChatId, "error", err)
			return false, classify(err)
		}

		switch r := res.(type) {
		case *client.ReportChatResultOk:
			return true, nil
		case *client.ReportChatResultOptionRequired:
			opt := pickReportOption(r.Options, reason)
			if opt == nil {
				return false, fmt.Errorf("tdlib: no report option for %s in %q", reason, r.Title)
			}
			t.logger.Debug("report option selected", "title", r.Title, "option", opt.Text)
			req.OptionId = opt.Id
		case *client.ReportChatResultTextRequired:
			req.OptionId = r.OptionId
			req.Text = text
		case *client.ReportChatResultMessagesRequired:
			// сообщения уже переданы, значит их не приняли
			return false, nil
		default:
			return false, fmt.Errorf("tdlib: unexpected report result %T", res)
		}
	}
	return false, nil
}

var reasonKeywords = map[domain.ReportReason][]string{
	domain.ReportReasonViolence: {"violence", "насили"},
}

func pickReportOption(opts []*client.ReportOption, reason domain.ReportReason) *client.ReportOption {
	for _, kw := range reasonKeywords[reason] {
		for _, o := range opts {
			if o != nil && strings.Contains(strings.ToLower(o.Text), kw) {
				return o
			}
		}
	}
	return nil
}

func (t *TelegramClient) JoinChannel(ctx context.Context, ch domain.ChannelReference) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	chatID := chatIDFromChannel(ch)
	if _, err := t.client.JoinChat(&client.JoinChatRequest{ChatId: chatID}); err != nil {
		t.logger.Error("JoinChat failed", "chat_id", chatID, "error", err)
		return classify(err)
	}
	t.logger.Info("Joined channel", "chat_id", chatID)
	return nil
}

func (t *TelegramClient) LeaveChannel(ctx context.Context, ch domain.ChannelReference) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	chatID := chatIDFromChannel(ch)
	if _, err := t.client.LeaveChat(&client.LeaveChatRequest{ChatId: chatID}); err != nil {
		t.logger.Error("LeaveChat failed", "chat_id", chatID, "error", err)
		return classify(err)
	}
	t.logger.Info("Left channel", "chat_id", chatID)
	return nil
}

func (t *TelegramClient) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.client == nil {
		return ErrNotAuthorized
	}
	if t.limiter != nil {
		return t.limiter.Wait(ctx)
	}
	return nil
}

// tdError разбирает ошибку TDLib. go-tdlib отдаёт её текстом "<code> <message>".
func tdError(err error) (int, string) {
	if err == nil {
		return 0, ""
	}
	text := err.Error()
	head, tail, _ := strings.Cut(text, " ")
	code, convErr := strconv.Atoi(head)
	if convErr != nil {
		return 0, text
	}
	return code, tail
}

func isTooManyRequests(err error) bool {
	code, msg := tdError(err)
	// обычно Code == 429, но подстрахуемся по тексту
	if code == 429 {
		return true
	}
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "too many requests") || strings.Contains(msg, "flood_wait")
}

func isNotFound(err error) bool {
	code, msg := tdError(err)
	msg = strings.ToUpper(msg)
	return code == 400 && (strings.Contains(msg, "USERNAME_NOT_OCCUPIED") ||
		strings.Contains(msg, "USERNAME_INVALID") ||
		strings.Contains(msg, "NOT FOUND"))
}

func classify(err error) error {
	if isTooManyRequests(err) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}

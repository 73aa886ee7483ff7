package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
)

// TelegramAdapter delivers reminders as inline-keyboard messages and routes
// button callbacks back into OnUserAction, grounded on the several
// telegram-bot-api manifests present in other_examples.
type TelegramAdapter struct {
	bot     *tgbotapi.BotAPI
	handler interfaces.UserActionHandler
	// chatUserIndex maps a Telegram chat id back to the user row it's
	// linked to, resolved out-of-band per §4.7 ("the adapter validates
	// user identity... by bot chat id mapped to user row").
	chatUserIndex map[int64]uint64
	logger        zerolog.Logger
}

func NewTelegramAdapter(token string, handler interfaces.UserActionHandler, logger zerolog.Logger) (*TelegramAdapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}
	return &TelegramAdapter{
		bot:           bot,
		handler:       handler,
		chatUserIndex: make(map[int64]uint64),
		logger:        logger.With().Str("component", "telegram_adapter").Logger(),
	}, nil
}

func (a *TelegramAdapter) Channel() entities.NotificationChannel {
	return entities.NotificationChannelTelegram
}

// Updates starts long-polling the bot API and returns the inbound update
// channel; callers range over it and forward each update to HandleUpdate.
func (a *TelegramAdapter) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	return a.bot.GetUpdatesChan(u)
}

// LinkChat associates a chat id with a user row, called once the user
// completes the out-of-band /start linking flow.
func (a *TelegramAdapter) LinkChat(chatID int64, userID uint64) {
	a.chatUserIndex[chatID] = userID
}

func (a *TelegramAdapter) Send(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error {
	if user.TelegramChatID == nil {
		return &PermanentError{Err: fmt.Errorf("user %d has no linked telegram chat", user.ID)}
	}
	chatID, err := strconv.ParseInt(*user.TelegramChatID, 10, 64)
	if err != nil {
		return &PermanentError{Err: fmt.Errorf("invalid telegram chat id: %w", err)}
	}

	msg := tgbotapi.NewMessage(chatID, tracking.Question)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Complete", callbackData("complete", reminder.ID)),
			tgbotapi.NewInlineKeyboardButtonData("Dismiss", callbackData("dismiss", reminder.ID)),
			tgbotapi.NewInlineKeyboardButtonData("Snooze 10m", callbackData("snooze:10", reminder.ID)),
		),
	)
	if _, err := a.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func callbackData(verb string, reminderID uint64) string {
	return fmt.Sprintf("%s:%d", verb, reminderID)
}

// HandleUpdate parses one inbound Telegram update's callback query, if
// present, and routes it to OnUserAction. Unrelated updates (plain
// messages, the /start linking command) are ignored here.
func (a *TelegramAdapter) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery == nil {
		return
	}
	cq := update.CallbackQuery
	userID, ok := a.chatUserIndex[cq.Message.Chat.ID]
	if !ok {
		a.logger.Warn().Int64("chat_id", cq.Message.Chat.ID).Msg("callback from unlinked chat")
		return
	}

	action, reminderID, err := parseCallbackData(cq.Data)
	if err != nil {
		a.logger.Warn().Err(err).Str("data", cq.Data).Msg("unparseable callback data")
		return
	}
	if err := a.handler.OnUserAction(ctx, userID, reminderID, action); err != nil {
		a.logger.Error().Err(err).Msg("on_user_action failed")
	}
}

// parseCallbackData parses "verb:reminderID" (complete, dismiss) or
// "verb:minutes:reminderID" (snooze) callback payloads produced by Send's
// inline keyboard.
func parseCallbackData(data string) (entities.UserAction, uint64, error) {
	fields := strings.Split(data, ":")
	if len(fields) < 2 {
		return entities.UserAction{}, 0, fmt.Errorf("malformed callback data %q", data)
	}
	verb := fields[0]

	switch verb {
	case "complete":
		reminderID, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return entities.UserAction{}, 0, err
		}
		return entities.UserAction{Kind: entities.UserActionComplete}, reminderID, nil
	case "dismiss":
		reminderID, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return entities.UserAction{}, 0, err
		}
		return entities.UserAction{Kind: entities.UserActionDismiss}, reminderID, nil
	case "snooze":
		if len(fields) != 3 {
			return entities.UserAction{}, 0, fmt.Errorf("malformed snooze callback data %q", data)
		}
		minutes, err := strconv.Atoi(fields[1])
		if err != nil {
			return entities.UserAction{}, 0, err
		}
		reminderID, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return entities.UserAction{}, 0, err
		}
		return entities.UserAction{Kind: entities.UserActionSnooze, Minutes: minutes}, reminderID, nil
	default:
		return entities.UserAction{}, 0, fmt.Errorf("unknown callback verb %q", verb)
	}
}

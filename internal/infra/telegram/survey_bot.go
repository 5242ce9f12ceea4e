package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-dialog-state/internal/dialog"
	"telegram-dialog-state/internal/domain"
	"telegram-dialog-state/internal/domain/model"
	"telegram-dialog-state/internal/domain/ports/repository"
)

// The demo dialog: a two-question survey. States are declared once so
// the storage layer can hand back canonical instances.
var (
	surveyStates = model.NewStateGroup("Survey", "name", "color")
	stateName    = surveyStates[0]
	stateColor   = surveyStates[1]
)

// StateGroups returns the registry of every dialog this bot runs.
func StateGroups() model.StateGroups {
	return model.StateGroups{"Survey": surveyStates}
}

// SurveyBot drives the survey dialog over long polling, keeping all
// conversational state in the dialog storage.
type SurveyBot struct {
	api     *tgbotapi.BotAPI
	storage repository.DialogStorage
	groups  model.StateGroups
	log     *zerolog.Logger
	workers int
}

func NewSurveyBot(token string, storage repository.DialogStorage, log *zerolog.Logger, workers int) (*SurveyBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}
	return &SurveyBot{
		api:     api,
		storage: storage,
		groups:  StateGroups(),
		log:     log,
		workers: workers,
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *SurveyBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("username", b.api.Self.UserName).Int("workers", b.workers).Msg("bot polling started")

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range updates {
				if update.Message == nil || update.Message.From == nil {
					continue
				}
				if err := b.handleMessage(ctx, update.Message); err != nil {
					b.log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("handle message")
				}
			}
		}()
	}

	<-ctx.Done()
	b.api.StopReceivingUpdates()
	wg.Wait()
	return nil
}

func (b *SurveyBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	proxy := dialog.NewStorageProxy(
		b.storage,
		msg.From.ID,
		msg.Chat.ID,
		msg.Chat.Type,
		nil,
		b.api.Self.ID,
		b.groups,
	)
	if msg.IsCommand() && msg.Command() == "start" {
		return b.startSurvey(ctx, proxy, msg)
	}
	return b.continueSurvey(ctx, proxy, msg)
}

func (b *SurveyBot) startSurvey(ctx context.Context, proxy *dialog.StorageProxy, msg *tgbotapi.Message) error {
	stack, err := proxy.LoadDefaultStack(ctx)
	if err != nil {
		return err
	}
	intentID := uuid.NewString()
	if err := proxy.SaveContext(ctx, model.NewContext(intentID, stack.ID, stateName)); err != nil {
		return err
	}
	stack.Push(intentID)

	sent, err := b.reply(msg.Chat.ID, "Hi! What is your name?")
	if err != nil {
		return err
	}
	msgID := int64(sent.MessageID)
	stack.LastMessageID = &msgID
	return proxy.SaveStack(ctx, stack)
}

func (b *SurveyBot) continueSurvey(ctx context.Context, proxy *dialog.StorageProxy, msg *tgbotapi.Message) error {
	stack, err := proxy.LoadDefaultStack(ctx)
	if err != nil {
		return err
	}
	intentID := stack.LastIntentID()
	if intentID == "" {
		_, err := b.reply(msg.Chat.ID, "Send /start to begin the survey.")
		return err
	}

	c, err := proxy.LoadContext(ctx, intentID)
	if errors.Is(err, domain.ErrUnknownIntent) || errors.Is(err, domain.ErrUnknownState) {
		// Stored dialog no longer usable; reset the conversation.
		b.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("resetting dialog")
		if err := proxy.RemoveStack(ctx, stack.ID); err != nil {
			return err
		}
		_, err := b.reply(msg.Chat.ID, "Something went stale. Send /start to begin again.")
		return err
	}
	if err != nil {
		return err
	}

	switch c.State {
	case stateName:
		c.DialogData["name"] = msg.Text
		c.State = stateColor
		if err := proxy.SaveContext(ctx, c); err != nil {
			return err
		}
		_, err := b.reply(msg.Chat.ID, "Nice to meet you! What is your favorite color?")
		return err
	case stateColor:
		name, _ := c.DialogData["name"].(string)
		if err := proxy.RemoveContext(ctx, intentID); err != nil {
			return err
		}
		stack.Pop()
		stack.LastMessageID = nil
		if err := proxy.SaveStack(ctx, stack); err != nil {
			return err
		}
		_, err := b.reply(msg.Chat.ID, fmt.Sprintf("Thanks %s, %s is a fine choice!", name, msg.Text))
		return err
	}
	_, err = b.reply(msg.Chat.ID, "Send /start to begin the survey.")
	return err
}

func (b *SurveyBot) reply(chatID int64, text string) (tgbotapi.Message, error) {
	return b.api.Send(tgbotapi.NewMessage(chatID, text))
}

package bot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"maestro/internal/config"
	"maestro/internal/domain"
	"maestro/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot is the manager-facing Telegram bot: moderation queue overview,
// booking exports and sheet resync.
type Bot struct {
	tgService  domain.TelegramService
	config     *config.Config
	moderation domain.ModerationService
	bookings   domain.BookingService
	repo       domain.Repository
	cache      domain.CacheRepository
	sheets     domain.SheetsWriter
	managers   map[int64]bool
	logger     *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	moderation domain.ModerationService,
	bookings domain.BookingService,
	repo domain.Repository,
	cache domain.CacheRepository,
	sheets domain.SheetsWriter,
	logger *zerolog.Logger,
) *Bot {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	managers := make(map[int64]bool, len(cfg.Managers))
	for _, id := range cfg.Managers {
		managers[id] = true
	}

	return &Bot{
		tgService:  tgService,
		config:     cfg,
		moderation: moderation,
		bookings:   bookings,
		repo:       repo,
		cache:      cache,
		sheets:     sheets,
		managers:   managers,
		logger:     logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	b.withRecovery(func() {
		chatID := update.Message.Chat.ID
		if !b.managers[chatID] {
			if !b.allowStranger(updateCtx, chatID) {
				return
			}
			b.reply(chatID, "Доступ только для менеджеров.")
			return
		}

		switch update.Message.Command() {
		case "start":
			b.handleStart(chatID)
		case "pending":
			b.handlePending(updateCtx, chatID)
		case "queue":
			b.handleQueue(updateCtx, chatID, update.Message.CommandArguments())
		case "export":
			b.handleExport(updateCtx, chatID)
		case "resync":
			b.handleResync(updateCtx, chatID)
		default:
			b.reply(chatID, "Неизвестная команда. Доступны: /pending, /queue, /export, /resync")
		}
	})
}

// allowStranger ограничивает частоту команд от чужих чатов,
// чтобы не отвечать на каждый запрос спамера.
func (b *Bot) allowStranger(ctx context.Context, chatID int64) bool {
	if b.cache == nil {
		return true
	}
	allowed, err := b.cache.CheckRateLimit(ctx, fmt.Sprintf("tg:%d", chatID),
		models.RateLimitRequests, models.RateLimitWindow*time.Second)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("rate limit check error")
		return true
	}
	if !allowed {
		b.logger.Warn().Int64("chat_id", chatID).Msg("rate limit exceeded")
	}
	return allowed
}

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, "Бот модерации маркетплейса.\n"+
		"/pending — счетчики очередей модерации\n"+
		"/queue <kind> — элементы очереди\n"+
		"/export — выгрузка заявок в Excel\n"+
		"/resync — перезапись листа Google Sheets")
}

func (b *Bot) handlePending(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("Очереди модерации:\n")
	for _, kind := range models.ModerationKinds {
		count, err := b.moderation.PendingCount(ctx, kind)
		if err != nil {
			b.logger.Error().Err(err).Str("kind", string(kind)).Msg("pending count error")
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: %d\n", kind, count))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleQueue(ctx context.Context, chatID int64, args string) {
	kind, err := models.ParseModerationKind(strings.TrimSpace(args))
	if err != nil {
		b.reply(chatID, "Укажите очередь: /queue profile|gallery|certificate|letter")
		return
	}

	items, err := b.moderation.ListPending(ctx, kind)
	if err != nil {
		b.logger.Error().Err(err).Str("kind", string(kind)).Msg("list pending error")
		b.reply(chatID, "Не удалось получить очередь.")
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "Очередь пуста.")
		return
	}

	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s — %s (%s)\n", item.PublicID, item.PerformerName, item.CreatedAt.Format("02.01.2006")))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	filePath, err := b.exportBookingsToExcel(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("export error")
		b.reply(chatID, "Не удалось сформировать выгрузку.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("send document error")
	}
}

func (b *Bot) handleResync(ctx context.Context, chatID int64) {
	if b.sheets == nil {
		b.reply(chatID, "Google Sheets не настроен.")
		return
	}

	bookings, err := b.repo.ListBookingsSince(ctx, time.Time{})
	if err != nil {
		b.logger.Error().Err(err).Msg("list bookings error")
		b.reply(chatID, "Не удалось прочитать заявки.")
		return
	}

	if err := b.sheets.ReplaceBookingsSheet(ctx, bookings); err != nil {
		b.logger.Error().Err(err).Msg("sheet resync error")
		b.reply(chatID, "Ошибка перезаписи листа.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Лист перезаписан, строк: %d", len(bookings)))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message error")
	}
}

func (b *Bot) withRecovery(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("recovered in update handler")
		}
	}()
	fn()
}

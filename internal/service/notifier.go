package service

import (
	"encoding/json"
	"fmt"

	"maestro/internal/domain"
	"maestro/internal/events"
	"maestro/internal/models"

	"github.com/rs/zerolog"
)

// Notifier pushes Telegram notifications to the manager chats when
// bookings and moderation items change state.
type Notifier struct {
	telegram domain.TelegramService
	managers []int64
	logger   zerolog.Logger
}

func NewNotifier(telegram domain.TelegramService, managers []int64, logger *zerolog.Logger) *Notifier {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "notifier").Logger()
	} else {
		log = zerolog.Nop()
	}
	return &Notifier{telegram: telegram, managers: managers, logger: log}
}

// Register subscribes the notifier to the event bus.
func (n *Notifier) Register(bus *events.EventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(events.EventBookingCreated, n.onBookingEvent)
	bus.Subscribe(events.EventBookingConfirmed, n.onBookingEvent)
	bus.Subscribe(events.EventBookingRejected, n.onBookingEvent)
	bus.Subscribe(events.EventBookingCancelled, n.onBookingEvent)
	bus.Subscribe(events.EventModerationSubmitted, n.onModerationEvent)
	bus.Subscribe(events.EventModerationApproved, n.onModerationEvent)
	bus.Subscribe(events.EventModerationRejected, n.onModerationEvent)
}

func (n *Notifier) onBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	var text string
	switch event.Type {
	case events.EventBookingCreated:
		text = fmt.Sprintf("📩 Новая заявка %s\nИсполнитель: %s\nКлиент: %s\nДата: %s",
			payload.RequestID, payload.PerformerName, payload.CustomerName, payload.Date.Format("02.01.2006"))
	case events.EventBookingConfirmed:
		text = fmt.Sprintf("✅ Заявка %s подтверждена исполнителем %s", payload.RequestID, payload.PerformerName)
	case events.EventBookingRejected:
		text = fmt.Sprintf("❌ Заявка %s отклонена исполнителем %s", payload.RequestID, payload.PerformerName)
	case events.EventBookingCancelled:
		text = fmt.Sprintf("🚫 Заявка %s отменена клиентом", payload.RequestID)
	default:
		return nil
	}

	n.broadcast(text)
	return nil
}

func (n *Notifier) onModerationEvent(event *events.Event) error {
	var payload events.ModerationEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	var text string
	switch event.Type {
	case events.EventModerationSubmitted:
		text = fmt.Sprintf("🔍 Новый элемент на модерацию (%s) от %s", kindTitle(payload.Kind), payload.PerformerName)
	case events.EventModerationApproved:
		text = fmt.Sprintf("✅ Модерация: %s от %s одобрен", kindTitle(payload.Kind), payload.PerformerName)
	case events.EventModerationRejected:
		text = fmt.Sprintf("❌ Модерация: %s от %s отклонен\nПричина: %s", kindTitle(payload.Kind), payload.PerformerName, payload.Reason)
	default:
		return nil
	}

	n.broadcast(text)
	return nil
}

func (n *Notifier) broadcast(text string) {
	if n.telegram == nil {
		return
	}
	for _, chatID := range n.managers {
		if _, err := n.telegram.SendMessage(chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("notification error")
		}
	}
}

func kindTitle(kind string) string {
	switch models.ModerationKind(kind) {
	case models.KindProfile:
		return "профиль"
	case models.KindGallery:
		return "галерея"
	case models.KindCertificate:
		return "сертификат"
	case models.KindLetter:
		return "рекомендательное письмо"
	}
	return kind
}

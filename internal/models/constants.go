package models

// Booking request statuses. Pending is the only non-terminal state.
const (
	BookingStatusPending             = "pending"
	BookingStatusConfirmed           = "confirmed"
	BookingStatusRejected            = "rejected"
	BookingStatusCancelledByCustomer = "cancelled_by_customer"
)

// IsTerminalBookingStatus reports whether no further transition is allowed.
func IsTerminalBookingStatus(status string) bool {
	switch status {
	case BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelledByCustomer:
		return true
	}
	return false
}

// Moderation statuses.
const (
	ModerationPending  = "pending_approval"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// Performer account types.
const (
	AccountTypeIndividual = "individual"
	AccountTypeCompany    = "company"
	AccountTypeAgency     = "agency"
)

// Performer categories. "all" in a search filter means no category filter.
const (
	CategoryTransport    = "Транспорт"
	CategoryCook         = "Повар"
	CategoryMusicians    = "Музыканты"
	CategoryHost         = "Ведущий"
	CategoryPhotographer = "Фотограф"
)

// Categories lists every known performer category.
var Categories = []string{
	CategoryTransport,
	CategoryCook,
	CategoryMusicians,
	CategoryHost,
	CategoryPhotographer,
}

func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

const (
	// DefaultRedisTTL время жизни кэшированных записей в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// AutocompleteLimit максимум подсказок городов
	AutocompleteLimit = 10

	// AutocompleteMinPrefix минимальная длина префикса для подсказок
	AutocompleteMinPrefix = 2

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// SearchCacheTTL время жизни кэша результатов поиска
	SearchCacheTTL = 5 * 60 // 5 минут в секундах
)

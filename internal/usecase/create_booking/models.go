package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования.
// Либо указывается окно регулярного расписания (StartDateTime/EndDateTime),
// либо ссылка на разовый слот или событие - тогда окно берётся из него.
type Request struct {
	CitizenID         int64      // ID гражданина
	ServiceID         int64      // ID услуги
	ServiceProviderID *int64     // Исполнитель; nil - автоподбор
	StartDateTime     time.Time  // Начало окна
	EndDateTime       time.Time  // Конец окна
	OneOffTimeslotID  *int64     // Ссылка на разовый слот (опционально)
	EventID           *int64     // Ссылка на событие (опционально)
	Notes             *string    // Заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                int64     // ID созданного бронирования
	UUID              string    // Публичный UUID
	CitizenID         int64     // ID гражданина
	ServiceID         int64     // ID услуги
	ServiceProviderID int64     // Назначенный исполнитель
	StartDateTime     time.Time // Начало окна
	EndDateTime       time.Time // Конец окна
	Status            string    // Статус бронирования

	OneOffTimeslotID *int64  // Ссылка на разовый слот
	EventID          *int64  // Ссылка на событие
	Notes            *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}

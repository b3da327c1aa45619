package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth извлекает принципала из заголовка X-User-ID и кладёт его в контекст.
// Никакой политики доступа здесь нет: решения о правах принимает
// permission oracle, которому хендлеры передают принципала явно
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		if header == "" {
			handlers.RespondError(w, http.StatusUnauthorized, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, "некорректный заголовок X-User-ID")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID возвращает принципала из контекста; 0 - если запрос не прошёл Auth
func UserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

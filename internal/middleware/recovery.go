package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panic時のレスポンスボディ。他のエラーレスポンスと同じ{"error": ...}形式を保つ。
const panicResponseBody = `{"error":"Internal server error."}`

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 統一エラーフォーマットの500レスポンスを返すミドルウェアを生成する。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(panicResponseBody))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

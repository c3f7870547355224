package middleware

import (
	"context"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	TgUserIDKey  contextKey = "tg_user_id"
)

// RequestContext attaches a request-scoped context with a fresh request id
// and the sender id to every update.
func RequestContext(base context.Context) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := context.WithValue(base, TgUserIDKey, c.Sender().ID)
			ctx = context.WithValue(ctx, RequestIDKey, uuid.New().String())
			c.Set("requestContext", ctx)
			return next(c)
		}
	}
}

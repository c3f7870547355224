package middleware

import (
	"golang.org/x/exp/slices"

	tele "gopkg.in/telebot.v3"
)

// AdminOnly gates operator commands behind an allow-list. Everyone else gets
// the same generic denial, with no hint of what the command would do.
type AdminOnly struct {
	AllowedUserIDs []int64
}

func (a *AdminOnly) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !slices.Contains(a.AllowedUserIDs, c.Sender().ID) {
				return c.Send("Access denied.")
			}
			return next(c)
		}
	}
}

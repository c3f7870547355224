package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// RateLimiter allows one in-flight update per user. A second event arriving
// while the first is still being handled gets a polite brush-off instead of
// racing the session.
type RateLimiter struct {
	Locks sync.Map
}

func (r *RateLimiter) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userLock, _ := r.Locks.LoadOrStore(c.Sender().ID, make(chan struct{}, 1))
			userChan := userLock.(chan struct{})

			select {
			case userChan <- struct{}{}:
				defer func() {
					<-userChan
				}()
				return next(c)
			default:
				return c.Send("Please wait, still working on your previous message.")
			}
		}
	}
}

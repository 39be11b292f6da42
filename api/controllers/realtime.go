package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/promolink/promolink-backend/api/responses"
	"github.com/promolink/promolink-backend/internal/notifications"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Authorization on websocket requests from
	// every client; origin policy is enforced by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type clientFrame struct {
	Action string `json:"action"`
}

// NotificationSocket upgrades the request and streams notifications to
// the authenticated user. The session keeps a local unread counter
// that increments per delivered notification; "read" and "read-all"
// frames adjust it after the client marks rows over REST, and "sync"
// re-seeds it from the store.
func NotificationSocket(hub *realtime.Hub, svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the handshake failure.
			logg.Error(r.Context(), "websocket upgrade failed", err)
			return
		}

		counter := realtime.NewCounter()
		hub.Register(userID, conn, func(msg realtime.Message) {
			if msg.Event == realtime.EventNotification {
				counter.Increment()
			}
		})
		defer hub.Unregister(userID, conn)

		ctx := r.Context()

		pushCount := func(count int64) {
			hub.Send(ctx, userID, realtime.Message{
				Event: realtime.EventUnreadCount,
				Data:  map[string]int64{"count": count},
			})
		}

		syncCount := func() error {
			count, err := svc.UnreadCount(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unread count")
			}
			pushCount(counter.Sync(count))
			return nil
		}

		if err := syncCount(); err != nil {
			logg.Error(ctx, "initial unread sync failed", err)
			return
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				// Normal close or broken connection; unregister handles both.
				return
			}

			var frame clientFrame
			if err := json.Unmarshal(payload, &frame); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "dropping malformed client frame")
				continue
			}

			switch frame.Action {
			case "sync":
				if err := syncCount(); err != nil {
					logg.Error(ctx, "unread re-sync failed", err)
					return
				}
			case "read":
				// Client marked one notification read over REST.
				pushCount(counter.Decrement())
			case "read-all":
				pushCount(counter.Reset())
			}
		}
	}
}

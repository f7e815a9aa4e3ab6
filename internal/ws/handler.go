package ws

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/security"
	"devconnect_go/internal/service"
)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
// Authenticates via Bearer token (Authorization header or Sec-WebSocket-Protocol),
// registers the connection as a presence handle, then dispatches events:
//   - join    -> announce presence on a chat pair (required to receive its events)
//   - send    -> persist message & fan out messageReceived to the peer's handles
//   - typing  -> ephemeral typingNotice to the peer's joined handles
//   - seen    -> advance message status & notify the sender's handles
func MakeHandler(
	registry *Registry,
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	requests domain.RequestRepository,
	chatSvc *service.ChatService,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			var authErr wsAuthError
			if errors.As(err, &authErr) {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByUsername(ctx, sub)
		if err != nil || user == nil || !user.IsActive {
			http.Error(w, "user not found or inactive", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		handle := NewHandle(user.ID, conn)
		registry.Connect(ctx, handle)
		defer registry.Disconnect(handle)

		for {
			var payload map[string]any
			if err := conn.ReadJSON(&payload); err != nil {
				break
			}
			kind, _ := payload["type"].(string)
			switch kind {

			case "join":
				targetIDf, _ := payload["target_user_id"].(float64)
				if targetIDf == 0 {
					sendError(handle, "join requires target_user_id")
					continue
				}
				targetID := int64(targetIDf)
				connected, err := requests.IsConnected(ctx, user.ID, targetID)
				if err != nil {
					log.Printf("ws: check connection: %v", err)
					sendError(handle, "failed to join chat")
					continue
				}
				if !connected {
					sendError(handle, "not connected with this user")
					continue
				}
				handle.Join(PairKey(user.ID, targetID))

			case "send":
				targetIDf, _ := payload["target_user_id"].(float64)
				text, _ := payload["text"].(string)
				imageURL, _ := payload["image_url"].(string)
				if targetIDf == 0 {
					sendError(handle, "send requires target_user_id")
					continue
				}
				targetID := int64(targetIDf)
				var imgPtr *string
				if imageURL != "" {
					imgPtr = &imageURL
				}
				msg, err := chatSvc.Send(ctx, user.ID, service.SendInput{
					ToUserID: targetID,
					Text:     text,
					ImageURL: imgPtr,
				})
				if err != nil {
					log.Printf("ws: send message from %d: %v", user.ID, err)
					sendError(handle, sendFailureReason(err))
					continue
				}
				resp, err := chatSvc.ToResponse(ctx, msg)
				if err != nil {
					log.Printf("ws: message response: %v", err)
					continue
				}

				pairKey := PairKey(user.ID, targetID)
				delivered := hub.FanOut(targetID, pairKey, map[string]any{
					"type":    "messageReceived",
					"message": resp,
				})
				if delivered > 0 {
					if _, err := chatSvc.MarkDelivered(ctx, msg.ID); err != nil {
						log.Printf("ws: mark delivered %d: %v", msg.ID, err)
					} else {
						resp.Status = domain.MessageStatusDelivered
					}
				}
				// ack carries the stored id so the sender can track seen marks
				_ = handle.Send(map[string]any{
					"type":    "messageSent",
					"message": resp,
				})

			case "typing":
				targetIDf, _ := payload["target_user_id"].(float64)
				if targetIDf == 0 {
					continue
				}
				targetID := int64(targetIDf)
				pairKey := PairKey(user.ID, targetID)
				// join already proved the connection; no store read here
				if !handle.Joined(pairKey) {
					continue
				}
				hub.FanOut(targetID, pairKey, map[string]any{
					"type":         "typingNotice",
					"user_id":      user.ID,
					"display_name": user.DisplayName,
				})

			case "seen":
				msgIDf, _ := payload["message_id"].(float64)
				if msgIDf == 0 {
					continue
				}
				msg, advanced, err := chatSvc.MarkSeen(ctx, user.ID, int64(msgIDf))
				if err != nil {
					log.Printf("ws: mark seen by %d: %v", user.ID, err)
					sendError(handle, "failed to mark message as seen")
					continue
				}
				if !advanced {
					continue
				}
				pairKey := PairKey(msg.PairLo, msg.PairHi)
				hub.FanOut(msg.SenderID, pairKey, map[string]any{
					"type":       "messageSeen",
					"message_id": msg.ID,
					"seen_by":    user.ID,
				})

			default:
				log.Printf("ws: unknown event type %q from user %d", kind, user.ID)
			}
		}
	}
}

func sendFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		return "you are not connected with this user"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid message"
	default:
		return "failed to send message"
	}
}

func sendError(h *Handle, msg string) {
	_ = h.Send(map[string]any{
		"type":    "error",
		"message": msg,
	})
}

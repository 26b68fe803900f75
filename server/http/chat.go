package http

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/w-h-a/groomwise/internal/service/session"
)

const (
	SessionCookie = "groomwise_session"
	Title         = "GroomWise"
	Caption       = "Your AI-powered personal grooming advisor, now with clarifying questions and budget checks!"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

type Advisor interface {
	Chat(ctx context.Context, sessionId string, userInput string) (string, error)
	CreateSession(ctx context.Context, sessionId string) (string, error)
	History(ctx context.Context, sessionId string) ([]session.Turn, *session.Turn, error)
	DeleteSession(ctx context.Context, sessionId string)
}

type pageData struct {
	Title   string
	Caption string
	Turns   []session.Turn
	Failed  *session.Turn
}

type wsRequest struct {
	Message string `json:"message"`
}

type wsResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

type chatHandler struct {
	advisor  Advisor
	upgrader websocket.Upgrader
}

func (h *chatHandler) index(w http.ResponseWriter, r *http.Request) {
	id, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	turns, failed, err := h.advisor.History(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := page.Execute(w, pageData{
		Title:   Title,
		Caption: Caption,
		Turns:   turns,
		Failed:  failed,
	}); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
	}
}

// chat runs one turn from the form post. Failures are kept on the session
// and shown on the next render.
func (h *chatHandler) chat(w http.ResponseWriter, r *http.Request) {
	id, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))

	if len(message) > 0 {
		if _, err := h.advisor.Chat(r.Context(), id, message); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("chat turn failed")
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// reset forgets the caller's conversation and clears the cookie so the next
// page load starts a new one.
func (h *chatHandler) reset(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil && validSessionId(c.Value) {
		h.advisor.DeleteSession(r.Context(), c.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *chatHandler) ws(w http.ResponseWriter, r *http.Request) {
	id, header, err := h.wsSession(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := hlog.FromRequest(r).With().Str("session", id).Logger()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var rsp wsResponse

		message := strings.TrimSpace(req.Message)
		if len(message) == 0 {
			rsp.Error = "message is required"
		} else {
			reply, err := h.advisor.Chat(r.Context(), id, message)
			if err != nil {
				logger.Error().Err(err).Msg("chat turn failed")
				rsp.Error = err.Error()
			}
			rsp.Reply = reply
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(rsp); err != nil {
			logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func (h *chatHandler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// session returns the caller's session id, starting a new session and
// setting the cookie when the request carries none.
func (h *chatHandler) session(w http.ResponseWriter, r *http.Request) (string, error) {
	id, cookie, err := h.resolve(r)
	if err != nil {
		return "", err
	}
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	return id, nil
}

func (h *chatHandler) wsSession(r *http.Request) (string, http.Header, error) {
	id, cookie, err := h.resolve(r)
	if err != nil {
		return "", nil, err
	}
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}
	return id, header, nil
}

func (h *chatHandler) resolve(r *http.Request) (string, *http.Cookie, error) {
	// a cookie from before a restart reopens an empty session under its id;
	// anything but a canonical uuid gets a fresh session
	if c, err := r.Cookie(SessionCookie); err == nil && validSessionId(c.Value) {
		id, err := h.advisor.CreateSession(r.Context(), c.Value)
		if err != nil {
			return "", nil, err
		}
		return id, nil, nil
	}

	id, err := h.advisor.CreateSession(r.Context(), "")
	if err != nil {
		return "", nil, err
	}

	return id, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func validSessionId(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// NewChatHandler routes the chat page, form posts, conversation reset, the
// websocket and the health check.
func NewChatHandler(advisor Advisor) http.Handler {
	h := &chatHandler{
		advisor: advisor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := mux.NewRouter()

	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.chat).Methods(http.MethodPost)
	r.HandleFunc("/reset", h.reset).Methods(http.MethodPost)
	r.HandleFunc("/ws", h.ws).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	return r
}

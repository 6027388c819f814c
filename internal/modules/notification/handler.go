package notification

import (
	"net/http"
	"slices"

	"evisa/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests to the status event stream.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler accepts browser origins from allowed; "*" or an empty list
// accepts any origin.
func NewHandler(hub *Hub, allowed []string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	anyOrigin := len(allowed) == 0 || slices.Contains(allowed, "*")
	return &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || slices.Contains(allowed, origin)
			},
		},
	}
}

// RegisterProtectedRoutes mounts GET /ws. JWTAuth accepts ?token= for
// browsers that cannot set headers on websocket requests.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/ws", h.Connect)
}

func (h *Handler) Connect(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Int64("user_id", caller.UserID), zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, caller.UserID)
}

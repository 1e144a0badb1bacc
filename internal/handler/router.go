package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/sakhi/backend/internal/handler/catalog"
	"github.com/zhouzirui/sakhi/backend/internal/handler/chat"
	"github.com/zhouzirui/sakhi/backend/internal/handler/persona"
	"github.com/zhouzirui/sakhi/backend/internal/handler/speech"
	"github.com/zhouzirui/sakhi/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/sakhi/backend/internal/middleware"
	personaModel "github.com/zhouzirui/sakhi/backend/internal/model/persona"
	catalogService "github.com/zhouzirui/sakhi/backend/internal/service/catalog"
	chatService "github.com/zhouzirui/sakhi/backend/internal/service/chat"
	speechService "github.com/zhouzirui/sakhi/backend/internal/service/speech"
	"github.com/zhouzirui/sakhi/backend/pkg/utils"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	AllowedOrigins []string
	Personas       personaModel.Store
	Chat           *chatService.Service
	Catalog        *catalogService.Service
	WebSocket      *speech.WebSocketHandler
	// Speech 为空时不注册 /speech 路由
	Speech         speechService.Provider
	SpeechLanguage string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
				"mode":   deps.Chat.Mode(),
			})
		})

		persona.New(deps.Personas).RegisterRoutes(api)
		catalog.New(deps.Catalog).RegisterRoutes(api)
		chat.New(deps.Chat).RegisterRoutes(api)
		stream.New(deps.Chat).RegisterRoutes(api)

		if deps.WebSocket != nil {
			deps.WebSocket.RegisterWebSocketRoutes(api)
		}
		if deps.Speech != nil {
			speech.New(deps.Speech, deps.SpeechLanguage).RegisterRoutes(api)
		}
	})

	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrdaebak/api/internal/config"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/enum"
	"github.com/mrdaebak/api/internal/event"
	"github.com/mrdaebak/api/internal/handler"
	mw "github.com/mrdaebak/api/internal/middleware"
	"github.com/mrdaebak/api/internal/service"
	"github.com/mrdaebak/api/internal/voice"
	"github.com/mrdaebak/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed. Order events
// go to events; the hub only serves the websocket endpoint.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, events event.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Services
	newOrderStore := func(db database.DBTX) service.OrderStore { return database.New(db) }
	catalogSvc := service.NewCatalogService(queries)
	cartSvc := service.NewCartService(queries)
	orderSvc := service.NewOrderService(pool, newOrderStore, events)
	statusSvc := service.NewStatusService(queries, events)
	couponSvc := service.NewCouponService(queries)
	inventorySvc := service.NewInventoryService(queries)

	// Auth and catalog routes (public)
	handler.NewAuthHandler(queries, cfg.JWTSecret).RegisterRoutes(r)
	handler.NewMenuHandler(catalogSvc, inventorySvc).RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Customer routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleCustomer))

			r.Route("/me", handler.NewCustomerHandler(queries, couponSvc).RegisterRoutes)
			r.Route("/cart", handler.NewCartHandler(cartSvc).RegisterRoutes)
			r.Route("/orders", handler.NewOrderHandler(orderSvc).RegisterRoutes)

			voiceHandler := handler.NewVoiceHandler(voice.NewClient(cfg.VoiceServiceURL), catalogSvc, cartSvc, couponSvc)
			r.Route("/voice", voiceHandler.RegisterRoutes)
		})

		// Kitchen routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleKitchenStaff))
			kitchenHandler := handler.NewKitchenHandler(statusSvc, inventorySvc, couponSvc)
			r.Route("/kitchen", kitchenHandler.RegisterRoutes)
		})

		// Delivery routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleDeliveryStaff))
			r.Route("/delivery", handler.NewDeliveryHandler(statusSvc).RegisterRoutes)
		})
	})

	return r
}

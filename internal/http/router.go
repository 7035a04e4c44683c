package http

import (
	"net/http"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/config"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/http/handlers"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/middleware"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/queue"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/ws"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NewRouter builds the full HTTP surface: the public customer reservation
// endpoints, the token-protected staff API, and the kitchen websocket feed.
func NewRouter(cfg config.Config, logger *zap.Logger, pool *pgxpool.Pool, qc *queue.Client, kitchen *ws.Server) http.Handler {
	h := &handlers.Handler{DB: pool, Logger: logger, Config: cfg, Queue: qc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, response.CodeInternal, "database unreachable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	})

	// Public customer surface, no authentication.
	r.Route("/customer/reservations", func(r chi.Router) {
		r.Get("/slots", h.ReservationSlots)
		r.Get("/", h.ReservationsByCustomer)
		r.Post("/", h.ReservationCreate)
		r.Put("/{reservationId}", h.ReservationCancel)
	})

	// Staff surface. Role requirements per path are resolved inside
	// StaffAuth; admin-only paths reject employees there.
	r.Group(func(r chi.Router) {
		r.Use(middleware.StaffAuth(cfg.JWTSecret))

		r.Route("/dining-tables", func(r chi.Router) {
			r.Get("/", h.TablesList)
			r.Get("/{tableId}", h.TableDetail)
			r.Post("/", h.TableCreate)
			r.Put("/{tableId}", h.TableUpdate)
			r.Delete("/{tableId}", h.TableDelete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.OrdersList)
			r.Get("/findOrderId", h.FindOpenOrder)
			r.Get("/{orderId}", h.OrderDetail)
			r.Post("/", h.OrderCreate)
			r.Post("/{orderId}/payment", h.OrderPayment)
		})

		r.Route("/order-items", func(r chi.Router) {
			r.Get("/", h.OrderItemsList)
			r.Get("/pending", h.OrderItemsPending)
			r.Get("/{orderItemId}", h.OrderItemDetail)
			r.Post("/", h.OrderItemCreate)
			r.Put("/{orderItemId}", h.OrderItemUpdate)
			r.Delete("/{orderItemId}", h.OrderItemDelete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.CategoriesList)
			r.Post("/", h.CategoryCreate)
			r.Put("/{categoryId}", h.CategoryUpdate)
			r.Delete("/{categoryId}", h.CategoryDelete)
		})

		r.Route("/food-items", func(r chi.Router) {
			r.Get("/", h.FoodItemsList)
			r.Post("/", h.FoodItemCreate)
			r.Put("/{foodItemId}", h.FoodItemUpdate)
			r.Delete("/{foodItemId}", h.FoodItemDelete)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.EmployeesList)
			r.Post("/", h.EmployeeCreate)
			r.Put("/{employeeId}", h.EmployeeUpdate)
			r.Delete("/{employeeId}", h.EmployeeDelete)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.ReservationsList)
			r.Put("/{reservationId}/status", h.ReservationStatusUpdate)
		})
	})

	// Websocket upgrades carry the token as a query parameter since
	// browsers cannot set headers on websocket handshakes.
	r.Get("/ws/kitchen", kitchen.HandleKitchen)

	return r
}

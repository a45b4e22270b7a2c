package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombooking/internal/api"
	"roombooking/internal/auth"
	"roombooking/internal/booking"
	"roombooking/internal/notification"
	"roombooking/internal/room"
	"roombooking/internal/schedule"
	"roombooking/internal/stats"
	"roombooking/internal/upload"
	"roombooking/internal/user"
	"roombooking/pkg/config"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool
	Log *slog.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(api.RequestLogger(deps.Log))
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Uploaded documents are public once the served URL is known.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(deps.Cfg.UploadDir))))

	usersRepo := user.NewRepository(deps.DB)
	authHandlers := auth.Handlers{
		Cfg:   deps.Cfg,
		Users: usersRepo,
	}
	userHandlers := user.Handlers{Users: usersRepo}
	roomHandlers := room.Handlers{Rooms: room.NewRepository(deps.DB)}
	scheduleHandlers := schedule.Handlers{Schedules: schedule.NewRepository(deps.DB)}

	notificationsRepo := notification.NewRepository(deps.DB)
	notificationHandlers := notification.Handlers{Notifications: notificationsRepo}

	admission := booking.NewAdmission(
		booking.NewPostgresStore(deps.DB),
		notification.BookingNotifier{Notifications: notificationsRepo},
		deps.Log,
	)
	bookingHandlers := booking.Handlers{Admission: admission}

	statsHandlers := stats.Handlers{Stats: stats.NewRepository(deps.DB)}
	uploadHandlers := upload.Handlers{
		Dir:           deps.Cfg.UploadDir,
		PublicBaseURL: deps.Cfg.PublicBaseURL,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandlers.Register)
		r.Post("/auth/login", authHandlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(api.RequireAuth(deps.Cfg.JWTSecret))

			r.Get("/auth/me", authHandlers.Me)

			// Rooms. /rooms/available must be registered before /rooms/{id}.
			r.Get("/rooms", roomHandlers.List)
			r.Get("/rooms/available", roomHandlers.Available)
			r.Get("/rooms/{id}", roomHandlers.Get)
			r.Get("/rooms/{id}/schedules", scheduleHandlers.ListByRoom)

			// Bookings
			r.Post("/bookings", bookingHandlers.Submit)
			r.Get("/bookings", bookingHandlers.List)
			r.Get("/bookings/mine", bookingHandlers.Mine)
			r.Get("/bookings/upcoming", bookingHandlers.Upcoming)
			r.Get("/bookings/{id}", bookingHandlers.Get)
			r.Patch("/bookings/{id}", bookingHandlers.Update)
			r.Patch("/bookings/{id}/status", bookingHandlers.Transition)
			r.Post("/bookings/{id}/cancel", bookingHandlers.Cancel)

			// Schedules (reads)
			r.Get("/schedules/{id}", scheduleHandlers.Get)

			// Notifications (own inbox)
			r.Get("/notifications/mine", notificationHandlers.List)
			r.Get("/notifications/unread-count", notificationHandlers.UnreadCount)
			r.Post("/notifications/{id}/read", notificationHandlers.MarkRead)
			r.Post("/notifications/read-all", notificationHandlers.MarkAllRead)
			r.Delete("/notifications/{id}", notificationHandlers.Delete)

			r.Get("/stats/dashboard", statsHandlers.Dashboard)

			// Profile edits check self-or-admin in the handler.
			r.Patch("/users/{id}", userHandlers.Update)

			r.Post("/upload", uploadHandlers.Upload)

			// Admin-only management
			r.Group(func(r chi.Router) {
				r.Use(api.RequireAdmin)

				r.Post("/rooms", roomHandlers.Create)
				r.Patch("/rooms/{id}", roomHandlers.Update)
				r.Delete("/rooms/{id}", roomHandlers.Delete)

				r.Delete("/bookings/{id}", bookingHandlers.Delete)

				r.Post("/schedules", scheduleHandlers.Create)
				r.Patch("/schedules/{id}", scheduleHandlers.Update)
				r.Delete("/schedules/{id}", scheduleHandlers.Delete)

				r.Post("/notifications", notificationHandlers.Create)

				r.Get("/stats/admin", statsHandlers.Admin)

				r.Get("/users", userHandlers.List)
				r.Patch("/users/{id}/role", userHandlers.UpdateRole)
				r.Delete("/users/{id}", userHandlers.Delete)
			})
		})
	})

	return r
}

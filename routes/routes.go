package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/clubhub/docs"
	"github.com/Dosada05/clubhub/handlers"
	"github.com/Dosada05/clubhub/metrics"
	"github.com/Dosada05/clubhub/middleware"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Players     *handlers.PlayerHandler
	Tournaments *handlers.TournamentHandler
	Signups     *handlers.SignupHandler
	Teams       *handlers.TeamHandler
	Messages    *handlers.MessageHandler
	Health      *handlers.HealthHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	Auth           *middleware.Authenticator
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
}

func SetupRoutes(h Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Telemetry(opts.Metrics, opts.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Check)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	auth := opts.Auth

	// websocket живёт дольше таймаута обычных запросов
	r.With(auth.Authenticate).Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.SignUp)
			r.Post("/signin", h.Auth.SignIn)
			r.Post("/google", h.Auth.GoogleSignIn)
			r.With(auth.Authenticate).Post("/signout", h.Auth.SignOut)
		})
		r.Post("/access-requests", h.Messages.RequestAccess)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.Users.GetMe)
				r.Patch("/", h.Users.UpdateMe)
				r.Put("/password", h.Auth.ChangePassword)
				r.Post("/linked-players/{playerID}", h.Users.LinkPlayer)
				r.Delete("/linked-players/{playerID}", h.Users.UnlinkPlayer)
			})

			r.Route("/players", func(r chi.Router) {
				r.Get("/", h.Players.ListPlayers)
				r.Get("/{playerID}", h.Players.GetPlayer)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireCoach)
					r.Post("/", h.Players.CreatePlayer)
					r.Put("/{playerID}", h.Players.UpdatePlayer)
					r.Delete("/{playerID}", h.Players.DeletePlayer)
				})
			})

			r.Route("/tournaments", func(r chi.Router) {
				r.Get("/", h.Tournaments.ListTournaments)
				r.With(auth.RequireCoach).Post("/", h.Tournaments.CreateTournament)

				r.Route("/{tournamentID}", func(r chi.Router) {
					r.Get("/", h.Tournaments.GetTournament)

					// права на запись игрока проверяет сервис
					r.Get("/signups", h.Signups.ListSignups)
					r.Get("/signups/{playerID}", h.Signups.GetSignup)
					r.Put("/signups/{playerID}", h.Signups.UpsertSignup)
					r.Delete("/signups/{playerID}", h.Signups.DeleteSignup)

					r.Get("/teams", h.Teams.ListTeams)
					r.Get("/rosters", h.Teams.ListRosters)
					r.Get("/teams/{teamID}/roster", h.Teams.GetRoster)
					r.Get("/carpool", h.Teams.GetCarpool)

					r.Group(func(r chi.Router) {
						r.Use(auth.RequireCoach)
						r.Put("/", h.Tournaments.UpdateTournament)
						r.Delete("/", h.Tournaments.DeleteTournament)
						r.Post("/calendar", h.Tournaments.SyncCalendar)
						r.Post("/flyer", h.Tournaments.UploadFlyer)

						r.Post("/teams", h.Teams.CreateTeam)
						r.Put("/teams/{teamID}", h.Teams.UpdateTeam)
						r.Delete("/teams/{teamID}", h.Teams.DeleteTeam)
					})
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireCoach)

				r.Post("/messages", h.Messages.SendMessage)
				r.Post("/messages/preview", h.Messages.PreviewRecipients)

				r.Get("/users", h.Users.ListUsers)
				r.Get("/users/{userID}", h.Users.GetUser)
				r.Delete("/users/{userID}", h.Users.DeleteUser)
			})
		})
	})

	return r
}

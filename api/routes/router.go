package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velorie/teamhub-backend/api/controllers"
	"github.com/velorie/teamhub-backend/api/middleware"
	"github.com/velorie/teamhub-backend/internal/auth"
	"github.com/velorie/teamhub-backend/internal/ideas"
	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/orders"
	"github.com/velorie/teamhub-backend/internal/projects"
	"github.com/velorie/teamhub-backend/internal/subscriptions"
	"github.com/velorie/teamhub-backend/internal/tasks"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/config"
	"github.com/velorie/teamhub-backend/pkg/db"
	"github.com/velorie/teamhub-backend/pkg/logger"
	"github.com/velorie/teamhub-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Projects      projects.Service
	Tasks         tasks.Service
	Orders        orders.Service
	Ideas         ideas.Service
	Notifications notifications.Service
	Subscriptions subscriptions.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	// The public VAPID key is needed before the browser can subscribe,
	// so it stays outside the auth fence.
	r.Get("/api/push/vapid-public-key", controllers.PushVAPIDKey(cfg.Push))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/me", controllers.MyProfile(svcs.Users, logg))

		r.Route("/push", func(r chi.Router) {
			r.Post("/subscribe", controllers.PushSubscribe(svcs.Subscriptions, logg))
			r.Post("/unsubscribe", controllers.PushUnsubscribe(svcs.Subscriptions, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationsCount(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
		})

		r.Get("/projects", controllers.ListProjects(svcs.Projects, logg))
		r.Get("/projects/{projectId}/tasks", controllers.ListProjectTasks(svcs.Tasks, logg))
		r.Post("/tasks/{taskId}/complete", controllers.CompleteTask(svcs.Tasks, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.ListEmployees(svcs.Users, logg))
			r.Post("/", controllers.CreateEmployee(svcs.Users, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", controllers.CreateProject(svcs.Projects, logg))
			r.Post("/{projectId}/assign", controllers.AssignProjectMember(svcs.Projects, logg))
			r.Post("/{projectId}/income", controllers.SetProjectIncome(svcs.Projects, logg))
			r.Post("/{projectId}/push", controllers.BroadcastProjectPush(svcs.Projects, logg))
			r.Post("/{projectId}/tasks", controllers.CreateTask(svcs.Tasks, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Post("/{orderId}/complete", controllers.CompleteOrder(svcs.Orders, logg))
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", controllers.ListIdeas(svcs.Ideas, logg))
			r.Post("/", controllers.CreateIdea(svcs.Ideas, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/transfer", controllers.TransferFunds(svcs.Users, logg))
			r.Post("/add", controllers.WalletAdd(svcs.Users, logg))
		})

		r.Get("/stats", controllers.DashboardStats(svcs.Users, logg))
	})

	return r
}

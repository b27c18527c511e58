package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendaflow/pos-backend/api/controllers"
	"github.com/vendaflow/pos-backend/api/middleware"
	couponsvc "github.com/vendaflow/pos-backend/internal/coupons"
	customersvc "github.com/vendaflow/pos-backend/internal/customers"
	financesvc "github.com/vendaflow/pos-backend/internal/finance"
	notificationsvc "github.com/vendaflow/pos-backend/internal/notifications"
	productsvc "github.com/vendaflow/pos-backend/internal/products"
	salesvc "github.com/vendaflow/pos-backend/internal/sales"
	tasksvc "github.com/vendaflow/pos-backend/internal/tasks"
	"github.com/vendaflow/pos-backend/pkg/config"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/redis"
)

// Services bundles every domain service the router exposes.
type Services struct {
	Products      productsvc.Service
	Customers     customersvc.Service
	Coupons       couponsvc.Service
	Sales         salesvc.Service
	Finance       financesvc.Service
	Notifications notificationsvc.Service
	Tasks         tasksvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	svcs Services,
	promRegistry *prometheus.Registry,
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

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/low-stock", controllers.ListLowStockProducts(svcs.Products, logg))
			r.Get("/{id}", controllers.GetProduct(svcs.Products, logg))
			r.Patch("/{id}", controllers.UpdateProduct(svcs.Products, logg))
			r.Delete("/{id}", controllers.DeleteProduct(svcs.Products, logg))
			r.Post("/{id}/stock", controllers.AdjustProductStock(svcs.Products, logg))
			r.Get("/{id}/movements", controllers.ListProductMovements(svcs.Products, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Get("/{id}", controllers.GetCustomer(svcs.Customers, logg))
			r.Patch("/{id}", controllers.UpdateCustomer(svcs.Customers, logg))
			r.Delete("/{id}", controllers.DeleteCustomer(svcs.Customers, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", controllers.CreateCoupon(svcs.Coupons, logg))
			r.Post("/validate", controllers.ValidateCoupon(svcs.Coupons, logg))
			r.Get("/", controllers.ListCoupons(svcs.Coupons, logg))
			r.Get("/{id}", controllers.GetCoupon(svcs.Coupons, logg))
			r.Post("/{id}/deactivate", controllers.DeactivateCoupon(svcs.Coupons, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.OpenSale(svcs.Sales, logg))
			r.Get("/", controllers.ListSales(svcs.Sales, logg))
			r.Get("/{id}", controllers.GetSale(svcs.Sales, logg))
			r.Post("/{id}/items", controllers.AddSaleItem(svcs.Sales, logg))
			r.Patch("/{id}/items/{itemID}", controllers.UpdateSaleItem(svcs.Sales, logg))
			r.Delete("/{id}/items/{itemID}", controllers.RemoveSaleItem(svcs.Sales, logg))
			r.Post("/{id}/preview", controllers.PreviewSale(svcs.Sales, logg))
			r.Post("/{id}/settle", controllers.SettleSale(svcs.Sales, logg))
			r.Post("/{id}/cancel", controllers.CancelSale(svcs.Sales, logg))
			r.Delete("/{id}", controllers.DeleteSale(svcs.Sales, logg))
		})

		r.Route("/finance", func(r chi.Router) {
			r.Post("/transactions", controllers.RecordTransaction(svcs.Finance, logg))
			r.Get("/transactions", controllers.ListTransactions(svcs.Finance, logg))
			r.Get("/transactions/{id}", controllers.GetTransaction(svcs.Finance, logg))
			r.Get("/summary", controllers.FinanceSummary(svcs.Finance, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.CountUnreadNotifications(svcs.Notifications, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", controllers.CreateTask(svcs.Tasks, logg))
			r.Get("/", controllers.ListTasks(svcs.Tasks, logg))
			r.Get("/due", controllers.ListDueTasks(svcs.Tasks, logg))
			r.Get("/{id}", controllers.GetTask(svcs.Tasks, logg))
			r.Patch("/{id}", controllers.UpdateTask(svcs.Tasks, logg))
			r.Post("/{id}/complete", controllers.CompleteTask(svcs.Tasks, logg))
			r.Delete("/{id}", controllers.DeleteTask(svcs.Tasks, logg))
		})
	})

	return r
}

package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"cookie-corner/internal/config"
	"cookie-corner/internal/database"
	"cookie-corner/internal/handlers"
	"cookie-corner/internal/middleware"
	"cookie-corner/internal/repositories"
	"cookie-corner/internal/services"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Server.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env != "development",
		SameSite: http.SameSiteLaxMode,
	}

	// Repositories
	productRepo := repositories.NewProductRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	orderRepo := repositories.NewOrderRepository(db.DB)
	registrationRepo := repositories.NewRegistrationRepository(db.DB)

	// Services
	var emailService services.EmailService = services.NewMockEmailService(services.ResendConfig{
		APIKey:    cfg.Resend.APIKey,
		FromEmail: cfg.Resend.FromEmail,
		FromName:  cfg.Resend.FromName,
		BccEmails: cfg.Admin.NotificationEmails,
	}, logger)

	paymentService := services.NewStripeService(services.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
	})

	checkoutService := services.NewCheckoutService(
		productRepo,
		eventRepo,
		orderRepo,
		registrationRepo,
		paymentService,
		cfg.Server.BaseURL,
		cfg.Stripe.Currency,
		logger,
	)

	notificationService := services.NewNotificationService(orderRepo, registrationRepo, eventRepo, emailService, logger)
	reconcilerService := services.NewReconcilerService(orderRepo, registrationRepo, paymentService, notificationService, logger)

	// Handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewWebhookHandler(reconcilerService)
	catalogHandler := handlers.NewCatalogHandler(productRepo, eventRepo)
	orderHandler := handlers.NewOrderHandler(orderRepo, registrationRepo)
	paymentReturnHandler := handlers.NewPaymentReturnHandler(sessionStore)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Post("/event-checkout", checkoutHandler.EventCheckout)
		r.Post("/stripe/webhook", webhookHandler.HandleStripeWebhook)

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)
		r.Get("/events", catalogHandler.ListEvents)
		r.Get("/events/{id}", catalogHandler.GetEvent)

		r.Get("/orders/{id}", orderHandler.GetOrder)
		r.Get("/registrations/{id}", orderHandler.GetRegistration)
	})

	r.Get("/payment/cancel", paymentReturnHandler.PaymentCancel)
	r.Get("/payment/success", paymentReturnHandler.PaymentSuccess)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Info().Str("addr", addr).Msg("server listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

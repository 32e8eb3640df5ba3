package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kazi-marketplace/internal/application/command"
	"kazi-marketplace/internal/application/query"
	"kazi-marketplace/internal/application/services"
	"kazi-marketplace/internal/domain/event"
	"kazi-marketplace/internal/domain/policy"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/internal/infrastructure/bus"
	httpHandler "kazi-marketplace/internal/infrastructure/http"
	"kazi-marketplace/internal/infrastructure/memory"
	"kazi-marketplace/internal/infrastructure/mongo"
	jwtutil "kazi-marketplace/pkg/jwt"
	"kazi-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded")
	}

	log.Println("Starting Kazi Marketplace API...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: MongoDB when configured, in-memory otherwise (local development)
	var (
		uowFactory   repository.UnitOfWorkFactory
		bookingRepo  repository.BookingRepository
		policySource policy.Source
		closeStorage func()
	)

	if mongoURI := getEnv("MONGO_URI", ""); mongoURI != "" {
		mongoConfig := &mongo.MongoConfig{
			URI:      mongoURI,
			Database: getEnv("MONGO_DATABASE", "kazi"),
			Timeout:  30 * time.Second,
		}

		mongoClient, err := mongo.NewMongoClient(mongoConfig)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		closeStorage = func() {
			if err := mongoClient.Close(); err != nil {
				log.Printf("Error closing MongoDB connection: %v", err)
			}
		}
		log.Println("Connected to MongoDB successfully")

		database := mongoClient.GetDatabase()
		uowFactory = mongo.NewMongoUnitOfWorkFactory(mongoClient.GetClient(), database)
		bookingRepo = mongo.NewMongoBookingRepository(database)
		policySource = mongo.NewMongoPolicySource(database)
	} else {
		log.Println("MONGO_URI not set, using in-memory storage")
		repo := memory.NewBookingRepository()
		uowFactory = memory.NewUnitOfWorkFactory(repo)
		bookingRepo = repo
		policySource = envPolicySource()
		closeStorage = func() {}
	}
	defer closeStorage()

	// Commission policy, seeded once at startup and reloadable at runtime
	policies, err := seedPolicyProvider(ctx, policySource)
	if err != nil {
		log.Fatalf("Failed to load commission policy: %v", err)
	}
	log.Printf("Commission rate: %s", policies.Current().Rate)

	// Event bus with notification subscribers
	eventBus := bus.NewAsyncEventBus()
	subscribeNotifications(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus:", err)
	}

	// Command handlers
	createBookingHandler := command.NewCreateBookingWithUoWHandler(uowFactory, eventBus)
	transitionBookingHandler := command.NewTransitionBookingWithUoWHandler(uowFactory, eventBus)
	resolveDisputeHandler := command.NewResolveDisputeWithUoWHandler(uowFactory, eventBus)

	// Query handlers
	getBookingHandler := query.NewGetBookingHandler(bookingRepo)
	listBookingsHandler := query.NewListBookingsHandler(bookingRepo)
	earningsHandler := query.NewEarningsHandler(bookingRepo, policies)
	dashboardHandler := query.NewDashboardStatsHandler(bookingRepo)

	// Application services
	bookingService := services.NewBookingService(
		createBookingHandler,
		transitionBookingHandler,
		resolveDisputeHandler,
		getBookingHandler,
		listBookingsHandler,
	)
	reportingService := services.NewReportingService(earningsHandler, dashboardHandler, policies)

	// HTTP controllers
	bookingController := httpHandler.NewHTTPBookingController(bookingService)
	earningsController := httpHandler.NewHTTPEarningsController(reportingService, bookingService, policies, policySource)

	jwtManager := jwtutil.NewJWTManager(getEnv("JWT_SECRET", "dev-secret"), 24*time.Hour)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.TimeoutMiddleware(30 * time.Second))
	r.Use(rateLimiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"kazi-marketplace"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuthMiddleware(jwtManager))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireParticipant)
			r.Post("/bookings", bookingController.CreateBooking)
			r.Get("/bookings", bookingController.ListBookings)
			r.Get("/bookings/{id}", bookingController.GetBooking)
			r.Put("/bookings/{id}/status", bookingController.TransitionBooking)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireProvider)
			r.Get("/providers/{id}/earnings", earningsController.GetProviderEarnings)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/bookings/{id}/dispute/resolve", bookingController.ResolveDispute)
			r.Get("/admin/earnings", earningsController.GetEarnings)
			r.Get("/admin/earnings/export", earningsController.ExportBookingsCSV)
			r.Get("/admin/dashboard", earningsController.GetDashboard)
			r.Post("/admin/policy/reload", earningsController.ReloadPolicy)
		})
	})

	// HTTP server
	port := getEnv("PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	eventBus.Stop()
	log.Println("Server stopped")
}

// envPolicySource reads the commission rate from COMMISSION_RATE, defaulting
// to the platform default when unset.
func envPolicySource() policy.Source {
	return policy.SourceFunc(func(ctx context.Context) (policy.CommissionPolicy, error) {
		raw := getEnv("COMMISSION_RATE", "")
		if raw == "" {
			return policy.NewCommissionPolicy(policy.DefaultCommissionRate)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return policy.CommissionPolicy{}, err
		}
		return policy.NewCommissionPolicy(rate)
	})
}

func seedPolicyProvider(ctx context.Context, src policy.Source) (*policy.Provider, error) {
	initial, err := src.GetCurrentPolicy(ctx)
	if err != nil {
		return nil, err
	}
	return policy.NewProvider(initial), nil
}

// subscribeNotifications wires booking lifecycle events to notification
// logging. A real deployment would push these to email or SMS.
func subscribeNotifications(eventBus *bus.AsyncEventBus) {
	eventBus.Subscribe("BookingCreated", bus.EventHandlerFunc(
		func(ctx context.Context, e event.DomainEvent) error {
			created := e.(*event.BookingCreated)
			log.Printf("Notify provider %s: new booking %s (%s)", created.ProviderID, created.BookingID, created.Title)
			return nil
		}))

	eventBus.Subscribe("BookingTransitioned", bus.EventHandlerFunc(
		func(ctx context.Context, e event.DomainEvent) error {
			transitioned := e.(*event.BookingTransitioned)
			log.Printf("Notify parties of booking %s: %s -> %s", transitioned.BookingID, transitioned.OldStatus, transitioned.NewStatus)
			return nil
		}))

	eventBus.Subscribe("DisputeResolved", bus.EventHandlerFunc(
		func(ctx context.Context, e event.DomainEvent) error {
			resolved := e.(*event.DisputeResolved)
			log.Printf("Notify parties of booking %s: dispute resolved as %s by %s", resolved.BookingID, resolved.Outcome, resolved.ResolvedBy)
			return nil
		}))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

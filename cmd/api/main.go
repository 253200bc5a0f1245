package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtly/backend/internal/config"
	"courtly/backend/internal/domain/booking"
	"courtly/backend/internal/domain/fees"
	"courtly/backend/internal/domain/notify"
	"courtly/backend/internal/domain/payments"
	"courtly/backend/internal/domain/relationship"
	"courtly/backend/internal/firebase"
	apihttp "courtly/backend/internal/http"
	"courtly/backend/internal/scheduler"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase app init failed: %v", err)
	}

	clients, err := firebase.NewClients(ctx, app)
	if err != nil {
		log.Fatalf("firebase clients init failed: %v", err)
	}
	defer clients.Close()

	// Stores
	relRepo := relationship.NewRepo(clients.Firestore)
	bookingRepo := booking.NewRepo(clients.Firestore)

	// Collaborators
	paymentsSvc := payments.NewService(clients.Firestore, payments.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})
	if cfg.StripeSecretKey == "" {
		log.Println("STRIPE_SECRET_KEY not set, payment instructions disabled")
	}
	notifySvc := notify.NewService(clients.Firestore, clients.Messaging)

	// Services
	relSvc := relationship.NewService(relRepo)
	feesSvc := fees.NewService(relRepo)
	bookingSvc := booking.NewService(bookingRepo, relRepo, paymentsSvc, notifySvc, cfg.ResponseWindow)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:             cfg,
		AuthClient:      clients.Auth,
		BookingSvc:      bookingSvc,
		RelationshipSvc: relSvc,
		FeesSvc:         feesSvc,
		PaymentsSvc:     paymentsSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Expiry sweep runs in-process; the deadline lives on the booking
	// documents, so restarts cost nothing.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweep := scheduler.New(bookingSvc, cfg.SweepInterval)
	go sweep.Run(sweepCtx)

	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	stopSweep()
	_ = srv.Shutdown(ctxShutdown)
}

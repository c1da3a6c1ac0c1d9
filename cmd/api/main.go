package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/dentika/clinic-api/internal/config"
	"github.com/dentika/clinic-api/internal/email"
	appointmentHandler "github.com/dentika/clinic-api/internal/handler/appointment"
	"github.com/dentika/clinic-api/internal/handler/health"
	imageHandler "github.com/dentika/clinic-api/internal/handler/image"
	patientHandler "github.com/dentika/clinic-api/internal/handler/patient"
	patientTreatmentHandler "github.com/dentika/clinic-api/internal/handler/patienttreatment"
	treatmentHandler "github.com/dentika/clinic-api/internal/handler/treatment"
	userHandler "github.com/dentika/clinic-api/internal/handler/user"
	"github.com/dentika/clinic-api/internal/middleware"
	"github.com/dentika/clinic-api/internal/repository/postgres"
	"github.com/dentika/clinic-api/internal/router"
	appointmentService "github.com/dentika/clinic-api/internal/service/appointment"
	eventService "github.com/dentika/clinic-api/internal/service/event"
	imageService "github.com/dentika/clinic-api/internal/service/image"
	patientService "github.com/dentika/clinic-api/internal/service/patient"
	patientTreatmentService "github.com/dentika/clinic-api/internal/service/patienttreatment"
	treatmentService "github.com/dentika/clinic-api/internal/service/treatment"
	userService "github.com/dentika/clinic-api/internal/service/user"
	"github.com/dentika/clinic-api/internal/storage"
	"github.com/dentika/clinic-api/internal/validation"
	"github.com/dentika/clinic-api/pkg/logger"
	"github.com/dentika/clinic-api/pkg/security"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(cfg.Database); err != nil {
		log.Fatal(err, "failed to run migrations")
	}

	store, err := storage.NewMinIOStore(cfg.Storage)
	if err != nil {
		log.Fatal(err, "failed to connect to object storage")
	}

	var mailer email.Service = email.Noop{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewMailer(cfg.SMTP)
	} else {
		log.Warn("no SMTP host configured, email notices disabled")
	}

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	treatmentRepo := postgres.NewTreatmentRepository(db)
	courseRepo := postgres.NewPatientTreatmentRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	imageRepo := postgres.NewImageRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	events := eventService.NewService(outboxRepo)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	userSvc := userService.NewService(userRepo, events, mailer, hasher, log)
	patientSvc := patientService.NewService(patientRepo, events, log)
	treatmentSvc := treatmentService.NewService(treatmentRepo, events, log)
	courseSvc := patientTreatmentService.NewService(courseRepo, events, log)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, userRepo, events, mailer, log)
	imageSvc := imageService.NewService(imageRepo, store, events, log)

	v := validation.New()

	r := router.NewRouter(
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RPS),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CacheTTL:      time.Duration(cfg.Cache.TTLSeconds) * time.Second,
			CacheCleanup:  time.Duration(cfg.Cache.CleanupSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "clinic_api",
		},
		log,
		health.NewHandler(db),
		userHandler.NewHandler(userSvc, v),
		patientHandler.NewHandler(patientSvc, courseSvc, imageSvc, v),
		treatmentHandler.NewHandler(treatmentSvc, v),
		patientTreatmentHandler.NewHandler(courseSvc, v),
		appointmentHandler.NewHandler(appointmentSvc, v),
		imageHandler.NewHandler(imageSvc, v),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited")
}

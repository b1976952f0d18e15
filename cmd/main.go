package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	cancelBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_booking"
	checkQuotaHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/check_quota"
	consolidateClientsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/consolidate_clients"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_client_bookings"
	getCompanyBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_company_bookings"
	getScheduleHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_schedule"
	updateBookingStatusHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_booking_status"
	updateScheduleHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	clientRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/client"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SchedulingService/internal/jobs/expirer"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	clientsService "github.com/m04kA/SMC-SchedulingService/internal/service/clients"
	configService "github.com/m04kA/SMC-SchedulingService/internal/service/config"
	quotaService "github.com/m04kA/SMC-SchedulingService/internal/service/quota"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/database"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// slotCache общий кеш слотов для use case и сервисов
type slotCache interface {
	Get(ctx context.Context, key cache.Key) ([]types.TimeString, bool)
	Set(ctx context.Context, key cache.Key, slots []types.TimeString)
	Invalidate(ctx context.Context, companyID int64, date string)
	InvalidateCompany(ctx context.Context, companyID int64)
}

type eventPublisher interface {
	Publish(ctx context.Context, subject string, event *events.BookingEvent) error
	Close() error
}

func main() {
	configPath := config.Path()

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// База данных
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN(), database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Successfully connected to database (driver=%s, host=%s, port=%d, db=%s)",
		cfg.Database.Driver, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(db, log); err != nil {
			log.Fatal("Failed to run migrations: %v", err)
		}
	}

	// При выключенных метриках обёртка работает как прозрачный прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	clientRepository := clientRepo.NewRepository(wrappedDB)
	configRepository := configRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)

	// Кеш слотов
	var slots slotCache
	switch cfg.Cache.Driver {
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		slots = cache.NewRedisCache(rdb, cfg.Redis.KeyPrefix, cfg.Cache.TTL(), log)
		log.Info("Slot cache: redis at %s, ttl=%s", cfg.Redis.Addr, cfg.Cache.TTL())
	default:
		slots = cache.NewMemoryCache(cfg.Cache.TTL())
		log.Info("Slot cache: in-memory, ttl=%s", cfg.Cache.TTL())
	}

	// Публикация событий
	var publisher eventPublisher
	switch cfg.Events.Driver {
	case "nats":
		publisher, err = events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.TopicPrefix, cfg.Metrics.ServiceName)
	case "kafka":
		publisher, err = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.TopicPrefix)
	default:
		publisher = events.NoopPublisher{}
	}
	if err != nil {
		log.Fatal("Failed to initialize %s publisher: %v", cfg.Events.Driver, err)
	}
	defer publisher.Close()
	log.Info("Booking events: driver=%s", cfg.Events.Driver)

	clock := &createBookingUC.RealTimeProvider{}
	retryPolicy := cfg.Booking.RetryPolicy()

	// Сервисы
	clientSvc := clientsService.NewService(
		clientRepository,
		appointmentRepository,
		txMgr,
		metricsCollector,
		cfg.Booking.DefaultCountryCode,
		retryPolicy,
		log,
	)
	quotaSvc := quotaService.NewService(
		configRepository,
		clientSvc,
		appointmentRepository,
		clock,
		log,
	)
	configSvc := configService.NewService(
		configRepository,
		txMgr,
		slots,
		cfg.Booking.DefaultTimezone,
		log,
	)
	bookingSvc := bookingsService.NewService(
		appointmentRepository,
		slots,
		publisher,
		metricsCollector,
		clock,
		log,
	)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		appointmentRepository,
		configRepository,
		serviceRepository,
		clientSvc,
		quotaSvc,
		txMgr,
		slots,
		publisher,
		metricsCollector,
		retryPolicy,
		clock,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		configRepository,
		serviceRepository,
		slots,
		metricsCollector,
		clock,
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getCompanyBookings := getCompanyBookingsHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(clientSvc, bookingSvc, log)
	checkQuota := checkQuotaHandler.NewHandler(quotaSvc, log)
	getSchedule := getScheduleHandler.NewHandler(configSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(configSvc, log)
	consolidateClients := consolidateClientsHandler.NewHandler(clientSvc, log)

	// Роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			log.Warn("GET /health - Database unavailable: %v", err)
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Публичные маршруты клиента ---
	api.HandleFunc("/companies/{companyId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/companies/{companyId}/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/companies/{companyId}/quota", checkQuota.Handle).Methods(http.MethodGet)
	api.HandleFunc("/companies/{companyId}/clients/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Управление компанией ---
	api.HandleFunc("/companies/{companyId}/bookings", getCompanyBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/companies/{companyId}/schedule", getSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/companies/{companyId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)
	api.HandleFunc("/companies/{companyId}/clients/consolidate", consolidateClients.Handle).Methods(http.MethodPost)

	// Фоновое истечение pending записей
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	jobsDone := make(chan struct{})
	if cfg.Maintenance.ExpireEnabled {
		worker := expirer.NewWorker(bookingSvc, cfg.Maintenance.ExpireInterval(), cfg.Maintenance.PendingTTL(), log)
		go func() {
			defer close(jobsDone)
			worker.Run(jobsCtx)
		}()
	} else {
		close(jobsDone)
	}

	// HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopJobs()
	<-jobsDone

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

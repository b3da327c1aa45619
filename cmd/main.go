package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addScheduleItemHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/add_schedule_item"
	cancelBookingHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/create_booking"
	createOneOffHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/create_oneoff_timeslot"
	deleteOneOffHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/delete_oneoff_timeslot"
	getAvailabilityHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/get_availability"
	getBookingHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/get_booking"
	getCitizenBookingsHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/get_citizen_bookings"
	getOneOffHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/get_oneoff_timeslot"
	getScheduleHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/get_schedule"
	removeScheduleItemHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/remove_schedule_item"
	updateBookingStatusHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/update_booking_status"
	updateOneOffHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/update_oneoff_timeslot"
	updateScheduleItemHandler "github.com/alysesue/bookings-api-sub004/internal/api/handlers/update_schedule_item"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	"github.com/alysesue/bookings-api-sub004/internal/config"
	"github.com/alysesue/bookings-api-sub004/internal/domain"
	bookingRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/booking"
	oneoffRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/oneoff"
	scheduleRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	authServiceClient "github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	serviceRegistryClient "github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
	bookingsService "github.com/alysesue/bookings-api-sub004/internal/service/bookings"
	oneoffsService "github.com/alysesue/bookings-api-sub004/internal/service/oneoffs"
	schedulesService "github.com/alysesue/bookings-api-sub004/internal/service/schedules"
	createBookingUC "github.com/alysesue/bookings-api-sub004/internal/usecase/create_booking"
	getAvailabilityUC "github.com/alysesue/bookings-api-sub004/internal/usecase/get_availability"
	"github.com/alysesue/bookings-api-sub004/pkg/dbmetrics"
	"github.com/alysesue/bookings-api-sub004/pkg/logger"
	"github.com/alysesue/bookings-api-sub004/pkg/metrics"
	"github.com/alysesue/bookings-api-sub004/pkg/simpletxmanager"
	"github.com/alysesue/bookings-api-sub004/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting bookings-api...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	authClient := authServiceClient.NewClient(
		cfg.AuthService.URL,
		time.Duration(cfg.AuthService.Timeout)*time.Second,
		log,
	)
	registryClient := serviceRegistryClient.NewClient(
		cfg.ServiceRegistry.URL,
		time.Duration(cfg.ServiceRegistry.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (AuthService=%s timeout=%ds, ServiceRegistry=%s timeout=%ds)",
		cfg.AuthService.URL, cfg.AuthService.Timeout, cfg.ServiceRegistry.URL, cfg.ServiceRegistry.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		scheduleRepository *scheduleRepo.Repository
		oneoffRepository   *oneoffRepo.Repository
		bookingRepository  *bookingRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		oneoffRepository = oneoffRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManagerWithMetrics(wrappedDB, metricsCollector)
	} else {
		scheduleRepository = scheduleRepo.NewRepository(db)
		oneoffRepository = oneoffRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Политика учёта ёмкости
	policy := domain.CapacityPolicy{
		OnHoldConsumesCapacity: cfg.Booking.OnHoldConsumesCapacity,
	}
	log.Info("Capacity policy: on_hold_consumes_capacity=%v", policy.OnHoldConsumesCapacity)

	// Инициализируем сервисы
	scheduleSvc := schedulesService.NewService(
		scheduleRepository,
		authClient,
		txMgr,
		log,
	)
	oneoffSvc := oneoffsService.NewService(
		oneoffRepository,
		authClient,
		txMgr,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		authClient,
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		scheduleRepository,
		oneoffRepository,
		bookingRepository,
		registryClient,
		policy,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		oneoffRepository,
		registryClient,
		getAvailabilityUseCase,
		txMgr,
		policy,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, metricsCollector, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getCitizenBookings := getCitizenBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	addScheduleItem := addScheduleItemHandler.NewHandler(scheduleSvc, log)
	updateScheduleItem := updateScheduleItemHandler.NewHandler(scheduleSvc, log)
	removeScheduleItem := removeScheduleItemHandler.NewHandler(scheduleSvc, log)
	getOneOff := getOneOffHandler.NewHandler(oneoffSvc, log)
	createOneOff := createOneOffHandler.NewHandler(oneoffSvc, log)
	updateOneOff := updateOneOffHandler.NewHandler(oneoffSvc, log)
	deleteOneOff := deleteOneOffHandler.NewHandler(oneoffSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность слотов услуги в диапазоне дат
	api.HandleFunc("/services/{serviceId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// Просмотр еженедельного расписания владельца
	api.HandleFunc("/{ownerKind:services|service-providers}/{ownerId}/schedule",
		getSchedule.Handle).Methods(http.MethodGet)

	// Просмотр разового слота
	api.HandleFunc("/oneoff-timeslots/{timeslotId}",
		getOneOff.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/citizens/{citizenId}/bookings", getCitizenBookings.Handle).Methods(http.MethodGet)

	// --- Еженедельные расписания ---
	protected.HandleFunc("/{ownerKind:services|service-providers}/{ownerId}/schedule/items",
		addScheduleItem.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/{ownerKind:services|service-providers}/{ownerId}/schedule/items/{itemId}",
		updateScheduleItem.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/{ownerKind:services|service-providers}/{ownerId}/schedule/items/{itemId}",
		removeScheduleItem.Handle).Methods(http.MethodDelete)

	// --- Разовые слоты ---
	protected.HandleFunc("/service-providers/{providerId}/oneoff-timeslots",
		createOneOff.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/oneoff-timeslots/{timeslotId}",
		updateOneOff.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/oneoff-timeslots/{timeslotId}",
		deleteOneOff.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

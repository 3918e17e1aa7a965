package main

import (
	"innbook/internal/events"
	"innbook/internal/guests"
	"innbook/internal/reservations/handler"
	"innbook/internal/reservations/repository"
	"innbook/internal/reservations/service"
	"innbook/internal/reservations/validator"
	"innbook/internal/rooms"
	"innbook/pkg/app"
	"innbook/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()

	reservationService, publisher := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(publisher.Close)
	serverApp.SetApp(
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewReservationHandler(reservationService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ReservationService, *events.Publisher) {
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewRoomLockRepository(cfg)

	guestDirectory := guests.New(cfg.Log, guests.Config{
		BaseURL:     cfg.GuestServiceURL,
		Timeout:     cfg.ProxyTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		Cooldown:    cfg.BreakerCooldown,
	})
	roomInventory := rooms.New(cfg.Log, rooms.Config{
		BaseURL:     cfg.RoomServiceURL,
		Timeout:     cfg.ProxyTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		Cooldown:    cfg.BreakerCooldown,
	})

	publisher := events.NewPublisher(cfg.Log, cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		guestDirectory,
		roomInventory,
		publisher,
		validator.NewReservationValidator(),
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, publisher
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safehub/config"
	"safehub/controllers"
	"safehub/models"
	"safehub/routes"
	"safehub/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	config.InitDB()
	config.InitLogger()
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// durable store for the offline emergency queue
	queueDir := os.Getenv("OFFLINE_QUEUE_DIR")
	if queueDir == "" {
		queueDir = "./data/queue"
	}
	bdb, err := badger.Open(badger.DefaultOptions(queueDir).WithLogger(nil))
	if err != nil {
		log.Fatalf("Failed to open offline queue store: %v", err)
	}
	defer bdb.Close()

	queue, err := services.NewOfflineQueue(bdb)
	if err != nil {
		log.Fatalf("Failed to init offline queue: %v", err)
	}
	defer queue.Close()

	// location samples arrive over mqtt; the engine degrades without them
	var location services.LocationProvider
	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		mq, err := services.NewMQTTLocationProvider(brokerURL, "safehub-engine")
		if err != nil {
			zap.L().Warn("mqtt location provider unavailable", zap.Error(err))
		} else {
			defer mq.Close()
			location = mq
		}
	}

	push, err := services.NewPushService(config.DB)
	if err != nil {
		log.Fatalf("Failed to init push service: %v", err)
	}
	dispatcher, err := services.NewSNSDispatcher(push)
	if err != nil {
		log.Fatalf("Failed to init dispatcher: %v", err)
	}

	guardians := services.NewGuardianService(config.DB)
	timers := services.NewTimerService(config.DB, location)
	notifier := services.NewGuardianNotifier(config.DB, dispatcher)

	conn := services.NewConnectivity(true)
	conn.OnReconnect(func() { queue.Drain(ctx) })
	probeAddr := os.Getenv("CONNECTIVITY_PROBE_ADDR")
	if probeAddr == "" {
		probeAddr = "sns.amazonaws.com:443"
	}
	conn.StartProbe(ctx, 15*time.Second, services.DialProbe(probeAddr, 3*time.Second))

	emergency := services.NewEmergencyService(config.DB, guardians, dispatcher, queue, conn)

	runner := services.NewTimerRunner(timers, notifier, location)
	runner.Start(ctx)

	// alert bus → websocket bridge
	hub := services.NewRealtimeHub()
	bus := services.NewAlertBus()
	bus.Subscribe(
		func(a models.SafetyAlert) { hub.BroadcastAll(map[string]any{"kind": "alert.created", "alert": a}) },
		func(a models.SafetyAlert) { hub.BroadcastAll(map[string]any{"kind": "alert.updated", "alert": a}) },
		func(a models.SafetyAlert) { hub.BroadcastAll(map[string]any{"kind": "alert.deleted", "alert": a}) },
	)
	alerts := services.NewAlertService(config.DB, bus)

	// retention sweep for synced queue records, on top of the drain-time prune
	cr := cron.New()
	if _, err := cr.AddFunc("@hourly", queue.Prune); err != nil {
		log.Fatalf("Failed to schedule queue prune: %v", err)
	}
	cr.Start()
	defer cr.Stop()

	r := routes.SetupRouter(routes.Deps{
		Timers:    controllers.NewTimerController(timers),
		Guardians: controllers.NewGuardianController(guardians),
		Emergency: controllers.NewEmergencyController(emergency, queue, conn),
		Alerts:    controllers.NewAlertController(alerts),
		Realtime:  controllers.NewRealtimeController(hub),
		Devices:   controllers.NewDeviceController(push),
	})
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

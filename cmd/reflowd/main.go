package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glockwork/ControLeo2/internal/handlers"
	"github.com/glockwork/ControLeo2/internal/hardware"
	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/mqtt"
	"github.com/glockwork/ControLeo2/internal/reflow"
	"github.com/glockwork/ControLeo2/internal/repository"
	"github.com/glockwork/ControLeo2/internal/repository/db"
	"github.com/glockwork/ControLeo2/internal/server"
	"github.com/glockwork/ControLeo2/internal/service"
	"github.com/glockwork/ControLeo2/internal/status"

	"github.com/spf13/viper"
)

const (
	defaultSafeTempC  = 50.0
	defaultBuzzerHold = time.Second
)

func main() {
	// load config.yml before the logger so log.level applies
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(logLevel())

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(sqlDB)

	// profile catalog: factory profiles plus the optional user file
	catalog, err := reflow.LoadCatalog(viper.GetString("oven.profiles_path"))
	if err != nil {
		log.Fatalw("failed to load profile catalog", "err", err)
	}

	// oven peripherals: GPIO hardware or the thermal simulator
	rig, err := buildOven(log)
	if err != nil {
		log.Fatalw("failed to init oven hardware", "err", err)
	}
	defer rig.Close(log)

	// MQTT telemetry (optional)
	pub, conn := buildPublisher(log)
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			log.Errorw("failed to close mqtt publisher", "err", cerr)
		}
	}()

	// wire dependencies
	sink := service.NewEventFanout(repos.Events, pub, log)
	engine := reflow.NewEngine(reflow.Config{
		SafeTempC:      safeTempC(),
		DefaultProfile: viper.GetInt("oven.default_profile"),
	}, catalog, rig.sensor, rig.buzzer, repos.Settings, sink, log)
	tracker := status.NewTracker(time.Now())

	services := service.NewService(service.Deps{
		Repos:      repos,
		Engine:     engine,
		Catalog:    catalog,
		Heaters:    rig.heaters,
		Tracker:    tracker,
		Publisher:  pub,
		Conn:       conn,
		Intervals:  loopIntervals(),
		SigningKey: viper.GetString("auth.signing_key"),
		Log:        log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the control loop
	go services.Control.Run(ctx)

	log.Infow("controller starting",
		"port", httpPort(),
		"simulated", viper.GetBool("hardware.simulated"),
		"profiles", catalog.Len(),
		"mqtt", viper.GetBool("mqtt.enabled"),
	)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, httpPort(), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

func httpPort() string {
	if port := viper.GetString("port"); port != "" {
		return port
	}
	return "8080"
}

func safeTempC() float64 {
	if v := viper.GetFloat64("oven.safe_temp_c"); v > 0 {
		return v
	}
	return defaultSafeTempC
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "reflow.db")
		dbPath = "reflow.db"
	}
	return db.InitDB(dbPath)
}

// loopIntervals reads the control loop cadences; unset values fall back to
// the defaults inside the control service.
func loopIntervals() service.Intervals {
	return service.Intervals{
		Poll:   viper.GetDuration("oven.poll_interval"),
		Sample: viper.GetDuration("oven.sample_interval"),
		Check:  viper.GetDuration("oven.check_interval"),
		Cycle:  viper.GetDuration("oven.cycle_interval"),
		Status: viper.GetDuration("oven.status_interval"),
	}
}

// ovenRig bundles the peripherals the engine and loop drive. In simulation
// one SimulatedOven serves all three roles.
type ovenRig struct {
	sensor  reflow.TemperatureSource
	heaters hardware.HeaterBank
	buzzer  reflow.Alarm
	closers []func() error
}

func (r *ovenRig) Close(log *logger.Logger) {
	for _, c := range r.closers {
		if err := c(); err != nil {
			log.Errorw("failed to close oven peripheral", "err", err)
		}
	}
}

// buildOven constructs the peripherals from configuration: the thermal
// simulator when hardware.simulated is set, GPIO devices otherwise.
func buildOven(log *logger.Logger) (*ovenRig, error) {
	if viper.GetBool("hardware.simulated") {
		sim := hardware.NewSimulatedOven(log)
		return &ovenRig{
			sensor:  sim,
			heaters: sim,
			buzzer:  sim,
			closers: []func() error{sim.Close},
		}, nil
	}

	chip := viper.GetString("hardware.chip")
	if chip == "" {
		chip = "gpiochip0"
	}

	sensor, err := hardware.NewMAX31855(chip,
		viper.GetInt("hardware.thermocouple.cs"),
		viper.GetInt("hardware.thermocouple.sck"),
		viper.GetInt("hardware.thermocouple.miso"),
	)
	if err != nil {
		return nil, fmt.Errorf("thermocouple: %w", err)
	}

	pins, err := heaterPins()
	if err != nil {
		_ = sensor.Close()
		return nil, err
	}
	heaters, err := hardware.NewRelayBank(chip, pins)
	if err != nil {
		_ = sensor.Close()
		return nil, fmt.Errorf("heater relays: %w", err)
	}

	hold := viper.GetDuration("hardware.buzzer_hold")
	if hold <= 0 {
		hold = defaultBuzzerHold
	}
	buzzer, err := hardware.NewGPIOBuzzer(chip, viper.GetInt("hardware.buzzer_pin"), hold)
	if err != nil {
		_ = heaters.Close()
		_ = sensor.Close()
		return nil, fmt.Errorf("buzzer: %w", err)
	}

	return &ovenRig{
		sensor:  sensor,
		heaters: heaters,
		buzzer:  buzzer,
		closers: []func() error{buzzer.Close, heaters.Close, sensor.Close},
	}, nil
}

func heaterPins() ([reflow.HeaterCount]int, error) {
	var pins [reflow.HeaterCount]int
	raw := viper.GetIntSlice("hardware.heater_pins")
	if len(raw) != reflow.HeaterCount {
		return pins, fmt.Errorf("hardware.heater_pins: want %d pins, got %d", reflow.HeaterCount, len(raw))
	}
	copy(pins[:], raw)
	return pins, nil
}

// buildPublisher returns the MQTT publisher, or a no-op when disabled or
// unreachable. Telemetry must never block the controller from starting.
func buildPublisher(log *logger.Logger) (mqtt.Publisher, mqtt.ConnectionStatus) {
	if !viper.GetBool("mqtt.enabled") {
		return mqtt.NoopPublisher{}, mqtt.NoopPublisher{}
	}
	clientID := viper.GetString("mqtt.client_id")
	if clientID == "" {
		clientID = "controleo2"
	}
	pub, err := mqtt.NewRealPublisher(viper.GetString("mqtt.broker"), clientID, log)
	if err != nil {
		log.Errorw("mqtt connect failed; telemetry disabled", "err", err, "broker", viper.GetString("mqtt.broker"))
		return mqtt.NoopPublisher{}, mqtt.NoopPublisher{}
	}
	return pub, pub
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the control loop; it forces the heaters off on exit
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}

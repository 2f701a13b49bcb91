package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/plugsunset/internal/events"
	"github.com/jmylchreest/plugsunset/internal/mqtt"
	"github.com/jmylchreest/plugsunset/internal/schedule"
	"github.com/jmylchreest/plugsunset/internal/server"
	"github.com/jmylchreest/plugsunset/internal/status"
	"github.com/jmylchreest/plugsunset/internal/timemath"
	"github.com/jmylchreest/plugsunset/pkg/kasa"
	"github.com/jmylchreest/plugsunset/pkg/sun"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler until interrupted (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduler(cmd.Context(), getApp(cmd))
		},
	}
}

// resolveHost returns the configured host, or finds the plug by alias
func resolveHost(ctx context.Context, a *app) (string, error) {
	cfg := a.cfg
	if cfg.Device.Host != "" {
		return cfg.Device.Host, nil
	}
	return kasa.FindHostByAlias(ctx, kasa.NewBroadcastDiscoverer(a.logger), cfg.Device.Alias,
		cfg.Discovery.Target, cfg.Discovery.Timeout, cfg.Discovery.Attempts, a.logger)
}

// newSunset builds the offset-adjusted sunset calculator for the configured location
func newSunset(a *app) *timemath.Sunset {
	loc := a.cfg.Location.TimeLocation()
	return timemath.NewSunset(sun.NewSource(loc), a.cfg.Location.Latitude, a.cfg.Location.Longitude,
		a.cfg.Schedule.OnOffset(), loc)
}

func runScheduler(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("Starting plugsunset",
		"version", a.info.Version,
		"commit", a.info.Commit,
		"buildDate", a.info.BuildDate,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := events.NewBus()
	tracker := status.NewTracker(cfg.Device.Alias, time.Now(), logger)
	tracker.Attach(bus)

	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.ClientID, logger)
		if err != nil {
			logger.Warn("MQTT disabled, broker unreachable", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			defer pub.Close()
			fwd := mqtt.NewForwarder(pub, cfg.MQTT.Topic, logger)
			bus.Subscribe(fwd.Handle)
			done := make(chan struct{})
			go func() {
				defer close(done)
				fwd.Run(ctx)
			}()
			defer func() {
				cancel()
				<-done
			}()
		}
	}

	if cfg.API.ListenAddress != "" {
		srv := server.New(logger, cfg.API, tracker, bus, a.info)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop()
	}

	host, err := resolveHost(ctx, a)
	if err != nil {
		logger.Error("Could not find plug", "alias", cfg.Device.Alias, "error", err)
		return err
	}
	logger.Info("Using plug", "alias", cfg.Device.Alias, "host", host)
	bus.Publish(events.NewEvent(events.PlugResolved, events.Resolved{Alias: cfg.Device.Alias, Host: host}))

	loc := cfg.Location.TimeLocation()
	offHour, offMinute := cfg.Schedule.OffClock()
	loop := schedule.New(kasa.NewPlug(host, cfg.Device.Timeout, logger), newSunset(a), schedule.Options{
		Alias:        cfg.Device.Alias,
		Host:         host,
		OffHour:      offHour,
		OffMinute:    offMinute,
		ApplyRetries: cfg.Schedule.ApplyRetries,
		Now:          func() time.Time { return time.Now().In(loc) },
		Events:       bus,
		Logger:       logger,
	})

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("Shutting down")
		return nil
	}
	return err
}

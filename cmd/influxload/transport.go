package main

import (
	"context"
	"fmt"

	"github.com/nerrad567/influxwire/internal/infrastructure/config"
	"github.com/nerrad567/influxwire/internal/infrastructure/database"
	"github.com/nerrad567/influxwire/internal/infrastructure/logging"
	"github.com/nerrad567/influxwire/internal/infrastructure/mqtt"
	"github.com/nerrad567/influxwire/internal/infrastructure/tsdb"
	"github.com/nerrad567/influxwire/internal/infrastructure/udp"
	"github.com/nerrad567/influxwire/internal/journal"
	"github.com/nerrad567/influxwire/internal/pipeline"

	_ "github.com/nerrad567/influxwire/migrations"
)

// transport is the selected Writer plus what the loader reports about it.
type transport struct {
	pipeline.Writer
	target string
	close  func() error
}

// Close releases the transport.
func (t *transport) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

// openWriter builds the Writer for cfg.Load.Transport.
//
// The HTTP transport pings the server first; a failed ping is logged, not
// fatal, because some compatible servers do not serve /ping.
func openWriter(ctx context.Context, cfg *config.Config, log *logging.Logger) (*transport, error) {
	switch cfg.Load.Transport {
	case config.TransportHTTP:
		client, err := tsdb.New(cfg.TSDB)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			log.Warn("tsdb ping failed", "url", cfg.TSDB.URL, "error", err)
		}
		log.Info("tsdb client ready", "write_url", client.WriteURL())
		return &transport{Writer: client, target: client.WriteURL(), close: client.Close}, nil

	case config.TransportUDP:
		client, err := udp.New(cfg.UDP)
		if err != nil {
			return nil, err
		}
		log.Info("udp client ready", "remote", client.RemoteAddr())
		return &transport{Writer: client, target: client.RemoteAddr().String()}, nil

	case config.TransportMQTT:
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, err
		}
		mqttLog := log.With("component", "mqtt")
		client.SetLogger(mqttLog)
		client.SetOnDisconnect(func(err error) {
			mqttLog.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"topic", client.Topics().Lines(),
		)
		return &transport{Writer: client, target: client.Topics().Lines(), close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Load.Transport)
	}
}

// openJournal opens and migrates the failure journal.
// A disabled journal yields a nil store and a no-op close.
func openJournal(ctx context.Context, cfg config.JournalConfig) (*journal.Store, func() error, error) {
	if !cfg.Enabled {
		return nil, func() error { return nil }, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, nil, err
	}
	return journal.NewStore(db.DB), db.Close, nil
}

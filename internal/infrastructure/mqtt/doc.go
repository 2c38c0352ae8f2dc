// Package mqtt publishes line protocol payloads to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing batches to a single line topic with QoS guarantees
//   - Last Will and Testament (LWT) on a retained status topic
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is one of three transports the loader can write through. Consumers
// such as Telegraf's mqtt_consumer input subscribe to the line topic with
// data_format = "influx" and forward the points to the database.
//
//	influxload → MQTT Broker → Telegraf → InfluxDB
//
// Each payload is one batch of newline-terminated lines, exactly as it
// would be sent to the /write endpoint.
//
// # Topics
//
//	influxwire/lines         line protocol batches
//	influxwire/lines_status  retained {"status":"online"|"offline"} document
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Write(ctx, payload)
package mqtt

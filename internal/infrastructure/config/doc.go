// Package config handles loading and validating influxwire configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Only the section of the selected transport (load.transport) is validated,
// so a UDP-only deployment does not need a database name.
//
// Security Considerations:
//   - MQTT passwords should be set via INFLUXWIRE_MQTT_PASSWORD, not the file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/influxwire.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := tsdb.New(cfg.TSDB)
package config

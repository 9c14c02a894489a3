// Package config provides configuration loading and validation for rategate.
//
// Configuration is read from a YAML file, merged with defaults, overridden
// by RATEGATE_* environment variables, and validated as a whole. Validation
// failures are collected into a single ValidationError rather than reported
// one at a time.
//
// Example configuration file:
//
//	logging:
//	  level: info
//	  format: text
//
//	metrics:
//	  enabled: true
//	  listen_address: "127.0.0.1:9090"
//	  path: /metrics
//
//	policies:
//	  search-api:
//	    max_calls: 5
//	    period: 1s
//	  billing-api:
//	    max_calls: 30
//	    period: 1m
//	    fifo: true
//
// The Watcher re-reads the file on change (with debouncing) so a running
// process can pick up policy adjustments without restarting.
package config

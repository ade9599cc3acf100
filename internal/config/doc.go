// Package config loads and validates the chart service configuration.
//
// # Configuration Sources
//
// Values are layered, later sources overriding earlier ones:
//
//	1. Default()
//	2. A YAML file: $CHART_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables are namespaced with CHART_ and follow the struct nesting:
//
//	CHART_SERVER_PORT=9090
//	CHART_UPLOAD_MAX_BYTES=10485760
//	CHART_RENDER_WORKERS=2
//	CHART_RENDER_WORD_CLOUD_MAX_WORDS=150
//	CHART_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load rejects out-of-range ports, non-positive timeouts and limits, an empty
// render pool and inconsistent word cloud font bounds. Logging is always JSON.
package config

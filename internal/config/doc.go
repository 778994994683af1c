// Package config provides centralized configuration management for bkpreport.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//  1. Default values (Default)
//  2. YAML file (config.yaml, configs/config.yaml or BKP_CONFIG_FILE)
//  3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern BKP_<SECTION>_<FIELD>:
//
//	BKP_SERVER_PORT=8080
//	BKP_LOGGING_LEVEL=debug
//	BKP_REPORT_CELL_MANAGERS=COMHP81,COMHP83
//	BKP_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Static Domain Data
//
// The Cell Manager list, the ordered schedule sheet mapping and the excluded
// sheets are immutable. Accessors return copies so callers cannot alter them.
package config

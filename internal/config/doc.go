// Package config provides centralized configuration management for the dashboard.
//
// # Configuration Sources
//
// Configuration is assembled in this order, later sources overriding earlier ones:
//
//  1. Default() values
//  2. A YAML file: $ENROLPULSE_CONFIG, config.yaml or configs/config.yaml
//  3. Environment variables (a .env file is loaded first when present)
//
// # Environment Variables
//
// All environment variables use the ENROLPULSE_ prefix followed by the section name:
//
//	ENROLPULSE_SERVER_PORT=8080
//	ENROLPULSE_DATA_DIR=/srv/enrolments
//	ENROLPULSE_DATA_CACHE_MODE=process
//	ENROLPULSE_LOGGING_LEVEL=debug
//
// # Example YAML
//
//	data:
//	  dir: data
//	  cache_mode: modtime
//	  pincode_top_n: 50
//	dashboard:
//	  title: UIDAI Aadhaar Dashboard
//
// The resolved configuration is validated with go-playground/validator struct tags.
package config

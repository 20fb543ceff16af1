// Package config provides configuration management for the reconciler.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file, with defaults declared as struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Database: MySQL connection details (transactional store)
//   - Warehouse: ClickHouse connection details (analytical store)
//   - Storage: S3/MinIO credentials for the statement archive
//   - Log: Logging level and format
//   - Recon: stage defaults (thresholds, checkpoint path)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Warehouse.Addr)
package config

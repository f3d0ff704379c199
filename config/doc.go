// Package config provides configuration loading and validation for the
// diarization service.
//
// It uses Viper to load config.yml, godotenv for .env files, and binds
// process environment variables on top, so deployment secrets like the model
// provider token never have to live in the YAML file.
//
// # Usage
//
//	cfg, err := config.Load("diard")
//
// Environment variables override file values using underscore-separated
// paths (e.g., PIPELINE_AUTH_TOKEN, SERVER_PORT).
package config

// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env tags, with optional .env support
// via github.com/joho/godotenv.
//
// Every package that needs settings declares its own Config struct with
// env/envDefault tags; cmd/loopin loads them once at startup.
package config

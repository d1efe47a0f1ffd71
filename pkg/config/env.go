package config

const (
	EnvPrefix = "TEAMHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

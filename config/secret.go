package config

type PostgresSecretData struct {
	ConnectionString string `json:"connectionString"`
}

// ProviderSecretData holds extra request headers per provider name, typically API keys.
type ProviderSecretData struct {
	Headers map[string]map[string]string `json:"headers"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/config"
)

type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func NewSecretsManagerClient(ctx context.Context) (*secretsmanager.Client, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(awsConfig), nil
}

// PostgresConnectionString reads the database connection string stored at path.
func PostgresConnectionString(ctx context.Context, client SecretGetter, path string) (string, error) {
	var pgSecrets config.PostgresSecretData
	if err := readSecret(ctx, client, path, &pgSecrets); err != nil {
		return "", fmt.Errorf("postgres secrets read error: %w", err)
	}
	if pgSecrets.ConnectionString == "" {
		return "", errors.New("postgres secret has no connection string")
	}
	return pgSecrets.ConnectionString, nil
}

// ProviderCredentials reads the per-provider headers stored at path, keyed by provider name.
func ProviderCredentials(ctx context.Context, client SecretGetter, path string) (map[string]map[string]string, error) {
	var providerSecrets config.ProviderSecretData
	if err := readSecret(ctx, client, path, &providerSecrets); err != nil {
		return nil, fmt.Errorf("provider secrets read error: %w", err)
	}
	log.WithField("providers", len(providerSecrets.Headers)).Info("loaded provider credentials")
	return providerSecrets.Headers, nil
}

func readSecret(ctx context.Context, client SecretGetter, path string, v any) error {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(path)})
	if err != nil {
		return err
	}
	if result.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", path)
	}
	return json.Unmarshal([]byte(*result.SecretString), v)
}

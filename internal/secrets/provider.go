// Copyright 2025 The Polyboost Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Provider fetches named secrets from the managed secret store.
type Provider interface {
	// GetSecret returns the raw string value of the named secret.
	GetSecret(ctx context.Context, name string) (string, error)
	// GetSecrets returns the named secret parsed as a JSON object.
	GetSecrets(ctx context.Context, name string) (map[string]string, error)
}

// API is the subset of the Secrets Manager client the provider uses.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider implements Provider on top of AWS Secrets Manager.
type SecretsManagerProvider struct {
	api API
}

// NewSecretsManagerProvider creates a provider backed by the given client.
func NewSecretsManagerProvider(api API) *SecretsManagerProvider {
	return &SecretsManagerProvider{api: api}
}

// GetSecret retrieves a plain string secret. Retrieval failures propagate:
// the secrets are fetched once at cold start and the service cannot run
// without them.
func (p *SecretsManagerProvider) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := p.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}
	return *out.SecretString, nil
}

// GetSecrets retrieves a secret whose value is a JSON object of string
// key/value pairs.
func (p *SecretsManagerProvider) GetSecrets(ctx context.Context, name string) (map[string]string, error) {
	raw, err := p.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to parse secret %s as JSON: %w", name, err)
	}
	return values, nil
}

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
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// fakeSecretsAPI returns canned secret values keyed by secret name.
type fakeSecretsAPI struct {
	values map[string]string
	err    error
}

func (f *fakeSecretsAPI) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	value, ok := f.values[aws.ToString(params.SecretId)]
	if !ok {
		return &secretsmanager.GetSecretValueOutput{}, nil
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(value)}, nil
}

func TestGetSecret(t *testing.T) {
	provider := NewSecretsManagerProvider(&fakeSecretsAPI{
		values: map[string]string{"polyboost/GitHubApp/webhook": "hook-secret"},
	})

	got, err := provider.GetSecret(context.Background(), "polyboost/GitHubApp/webhook")
	if err != nil {
		t.Fatalf("GetSecret returns error: %v", err)
	}
	if got != "hook-secret" {
		t.Errorf("GetSecret is %q, expected %q", got, "hook-secret")
	}
}

func TestGetSecret_MissingValue(t *testing.T) {
	provider := NewSecretsManagerProvider(&fakeSecretsAPI{})

	_, err := provider.GetSecret(context.Background(), "polyboost/GitHubApp/private-key")
	if err == nil {
		t.Fatal("GetSecret should fail when the secret has no string value")
	}
}

func TestGetSecret_APIError(t *testing.T) {
	provider := NewSecretsManagerProvider(&fakeSecretsAPI{err: errors.New("access denied")})

	_, err := provider.GetSecret(context.Background(), "polyboost/GitHubApp/webhook")
	if err == nil {
		t.Fatal("GetSecret should propagate API errors")
	}
}

func TestGetSecrets_JSONObject(t *testing.T) {
	provider := NewSecretsManagerProvider(&fakeSecretsAPI{
		values: map[string]string{"polyboost/GitHubApp": `{"client-id":"abc","client-secret":"def"}`},
	})

	got, err := provider.GetSecrets(context.Background(), "polyboost/GitHubApp")
	if err != nil {
		t.Fatalf("GetSecrets returns error: %v", err)
	}
	if got["client-id"] != "abc" || got["client-secret"] != "def" {
		t.Errorf("GetSecrets is %v", got)
	}
}

func TestGetSecrets_NotJSON(t *testing.T) {
	provider := NewSecretsManagerProvider(&fakeSecretsAPI{
		values: map[string]string{"polyboost/GitHubApp": "not json"},
	})

	_, err := provider.GetSecrets(context.Background(), "polyboost/GitHubApp")
	if err == nil {
		t.Fatal("GetSecrets should fail on non-JSON secret values")
	}
}

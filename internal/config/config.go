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

// Package config holds the environment-driven configuration for installhook.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config carries every tunable the service reads from the environment.
// It is populated once in main and passed to the components that need it;
// no package reads the environment on its own.
type Config struct {
	// Region is the AWS region hosting the installations table, the
	// secret store, and the SES identity.
	Region string `envconfig:"AWS_REGION" default:"us-west-2"`

	// TableName is the DynamoDB table keyed by account (email address or
	// organization login).
	TableName string `envconfig:"INSTALLATIONS_TABLE" default:"Polyboost.GitHub-App.installations"`

	// UsernameIndex is the non-unique secondary index on the username
	// attribute, used for reverse lookups.
	UsernameIndex string `envconfig:"USERNAME_INDEX" default:"username-index"`

	// SecretStore is the Secrets Manager prefix under which the GitHub App
	// private key and webhook secret are stored.
	SecretStore string `envconfig:"SECRET_STORE" default:"polyboost/GitHubApp"`

	// GitHubAppID identifies the GitHub App this service backs.
	GitHubAppID int64 `envconfig:"GITHUB_APP_ID" default:"472802"`

	// MonitoringEmail receives the internal monitoring notifications sent
	// after every handled event.
	MonitoringEmail string `envconfig:"MONITORING_EMAIL" default:"monitoring@polyboost.dev"`

	// SenderEmail is the verified SES identity outbound mail is sent from.
	SenderEmail string `envconfig:"SENDER_EMAIL" default:"monitoring@polyboost.dev"`

	// EmailNotifications gates outbound customer email. When false, sends
	// are logged instead of delivered.
	EmailNotifications bool `envconfig:"EMAIL_NOTIFICATIONS" default:"false"`

	// ListenAddr and Port configure the HTTP listener used when the
	// service runs outside Lambda.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:"localhost"`
	Port       int    `envconfig:"PORT" default:"8080"`

	// AppVersion is stamped into the deployment package and logged at
	// startup.
	AppVersion string `envconfig:"APP_VERSION" default:"dev"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// PrivateKeySecret returns the Secrets Manager name of the GitHub App
// private key.
func (c *Config) PrivateKeySecret() string {
	return c.SecretStore + "/private-key"
}

// WebhookSecret returns the Secrets Manager name of the webhook signing
// secret.
func (c *Config) WebhookSecret() string {
	return c.SecretStore + "/webhook"
}

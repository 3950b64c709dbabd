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

// Command installhook runs the GitHub App installation webhook service.
//
// The same binary serves two deployments: inside AWS Lambda (detected via
// AWS_LAMBDA_FUNCTION_NAME) requests arrive through the API Gateway proxy
// adapter, everywhere else a plain HTTP listener is started. All heavy
// setup, including the one-time secret fetch, happens before the first
// request is accepted.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"go.uber.org/zap"

	"github.com/polyboost/installhook/internal/config"
	"github.com/polyboost/installhook/internal/email"
	"github.com/polyboost/installhook/internal/github"
	"github.com/polyboost/installhook/internal/installation"
	"github.com/polyboost/installhook/internal/secrets"
	"github.com/polyboost/installhook/internal/store"
	"github.com/polyboost/installhook/internal/webhook"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), log); err != nil {
		log.Fatal("service failed", zap.Error(err))
	}
}

func run(ctx context.Context, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.Info("starting installhook",
		zap.String("version", cfg.AppVersion),
		zap.String("region", cfg.Region))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return err
	}

	provider := secrets.NewSecretsManagerProvider(secretsmanager.NewFromConfig(awsCfg))
	privateKey, err := provider.GetSecret(ctx, cfg.PrivateKeySecret())
	if err != nil {
		return err
	}
	webhookSecret, err := provider.GetSecret(ctx, cfg.WebhookSecret())
	if err != nil {
		return err
	}

	accounts := store.NewDynamoStore(
		dynamodb.NewFromConfig(awsCfg), cfg.TableName, cfg.UsernameIndex, log)
	sender := email.NewSESSender(
		ses.NewFromConfig(awsCfg), cfg.SenderEmail, cfg.MonitoringEmail,
		cfg.EmailNotifications, log)
	clients := github.NewAppFactory(cfg.GitHubAppID, []byte(privateKey))

	handler := installation.NewHandler(accounts, sender, clients, log)
	server := webhook.NewServer(cfg.ListenAddr, cfg.Port, handler, webhookSecret, log)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Info("running in Lambda mode")
		adapter := httpadapter.New(server.Handler())
		lambda.StartWithOptions(adapter.ProxyWithContext, lambda.WithContext(ctx))
		return nil
	}

	return server.Start(ctx)
}

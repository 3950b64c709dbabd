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

// Package secrets retrieves named secrets from AWS Secrets Manager.
//
// The GitHub App private key and the webhook signing secret live under a
// common prefix (see config.Config.SecretStore) and are fetched once at
// process cold start. Secrets may be stored either as a plain string
// (GetSecret) or as a JSON object of string pairs (GetSecrets).
//
// Unlike the rest of the service, retrieval errors here are fatal: without
// the private key and webhook secret the service cannot authenticate
// anything, so main exits rather than serving traffic.
package secrets

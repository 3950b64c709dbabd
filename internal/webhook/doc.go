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

// Package webhook provides the HTTP surface receiving GitHub App webhook
// deliveries for installhook.
//
// Webhook Security:
//
// All webhook requests must include a valid X-Hub-Signature-256 header
// containing an HMAC-SHA256 signature computed with the webhook secret.
// Requests with invalid or missing signatures are rejected with HTTP 401.
//
// Event Handling:
//
// Only installation and installation_repositories events are dispatched;
// everything else is acknowledged and dropped. Once a delivery is
// dispatched the response is always 200: GitHub disables hooks that fail
// repeatedly, and a lost email or log line is cheaper than losing
// deliveries entirely.
//
// Rate Limiting:
//
// Deliveries are rate-limited per account using a token bucket, 10 per
// second by default. Requests exceeding the limit receive HTTP 429.
//
// The same handler serves both the standalone HTTP server (Start) and the
// Lambda proxy adapter (Handler).
package webhook

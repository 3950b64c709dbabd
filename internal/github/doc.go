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

// Package github provides the GitHub API surface installhook consumes.
//
// The service acts as a GitHub App: it never holds a user token. Every API
// call is authenticated as one installation, via a JWT signed with the App
// private key exchanged for an installation token (handled by
// ghinstallation transports under the hood). AppFactory mints a Client per
// installation id taken from the webhook payload.
//
// Three operations cover everything the event handler needs:
//   - GetUserByUsername: public profile, including the public email if set
//   - ListUserEmails: the installer's email list, for the
//     primary-and-verified fallback when no public email exists
//   - GetRepository: visibility and size, used only for access logging
//
// Calls are made once, with no retry: a failed lookup during webhook
// handling is logged and absorbed by the handler, and the invocation
// deadline leaves no room for backoff loops.
package github

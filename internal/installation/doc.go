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

// Package installation implements the business response to GitHub App
// installation lifecycle events.
//
// Grants (created, repositories added) resolve the installer's contact
// email, persist the account record, send a welcome notice, and scan the
// granted repositories for access logging. Uninstalls blank the stored
// install info, keep the account row for history, and send a departure
// notice.
//
// ResolveAccount holds the identity decision tree as a pure function;
// Handler does the orchestration around it. Collaborator failures never
// propagate out of the handler, since the webhook response must stay 200.
package installation

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

// Package email sends transactional notifications through AWS SES.
//
// Two kinds of mail leave this service: customer-facing notices (welcome on
// install, departure on uninstall) and internal monitoring summaries sent
// after every handled event. Both are plain-text. Monitoring mail is
// fire-and-forget: a delivery failure is logged and never aborts the flow
// that triggered it.
//
// A blank recipient simulates the send instead of erroring, because org
// installations may have no resolvable contact address. The
// EMAIL_NOTIFICATIONS flag gates real delivery so staging environments can
// run against production-shaped data without mailing anyone.
package email

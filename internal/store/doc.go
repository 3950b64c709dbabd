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

// Package store persists installation account records in DynamoDB.
//
// One table holds every record, keyed by account: an email address for user
// installations, the organization login for org installations, or a
// "!"-prefixed placeholder when email resolution failed for a username. A
// non-unique secondary index on username supports reverse lookups, which may
// return several rows for the same user (a real account and a placeholder).
//
// Writes are merge-updates: a Patch carries only the fields to change, and
// Apply (a pure function mirrored by the DynamoDB update expression) leaves
// everything else intact while always refreshing LastUpdated. Revoking
// access blanks InstallationID rather than deleting the row, so account
// history can outlive the installation.
//
// The store relies on DynamoDB's per-key atomicity only. There are no
// cross-record transactions and none are needed: each webhook invocation
// works on the rows of a single account/username.
package store

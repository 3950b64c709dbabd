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

package store

import (
	"strings"
	"time"
)

// errorAccountPrefix marks placeholder rows recorded when email resolution
// failed for a username. These are not real contactable accounts and must
// be cleaned up once resolution later succeeds.
const errorAccountPrefix = "!"

// Record is one row in the installations table. The primary key is Account:
// an email address for a user installation (lowercased) or the organization
// login for an org installation. Username is indexed separately and is not
// unique; a user may appear under both a real account and a placeholder.
type Record struct {
	Account        string `dynamodbav:"account"`
	InstallationID string `dynamodbav:"installationId"`
	Username       string `dynamodbav:"username"`
	Owner          string `dynamodbav:"owner,omitempty"`
	Details        string `dynamodbav:"details,omitempty"`
	LastUpdated    int64  `dynamodbav:"lastUpdated"`
	AuthToken      string `dynamodbav:"authToken,omitempty"`
}

// HasEmailAccount reports whether the record is keyed by an email address
// rather than an organization login or a placeholder.
func (r *Record) HasEmailAccount() bool {
	return strings.Contains(r.Account, "@")
}

// ErrorAccount returns the placeholder account key for a username whose
// email could not be resolved.
func ErrorAccount(username string) string {
	return errorAccountPrefix + username
}

// IsErrorAccount reports whether the account key is a resolution-failure
// placeholder.
func IsErrorAccount(account string) bool {
	return strings.HasPrefix(account, errorAccountPrefix)
}

// Patch describes a partial update to a record. Nil fields are left
// untouched; non-nil fields overwrite, including overwriting with the empty
// string (used to blank installationId on revocation).
type Patch struct {
	Username       *string
	InstallationID *string
	Owner          *string
	Details        *string
	AuthToken      *string
}

// IsZero reports whether the patch carries no fields at all.
func (p Patch) IsZero() bool {
	return p.Username == nil && p.InstallationID == nil && p.Owner == nil &&
		p.Details == nil && p.AuthToken == nil
}

// Apply merges a patch into a record and refreshes LastUpdated. It is a pure
// function so merge semantics can be tested without a storage backend; the
// DynamoDB implementation mirrors it with an update expression.
func Apply(r Record, p Patch, now time.Time) Record {
	r.LastUpdated = now.Unix()
	if p.Username != nil {
		r.Username = *p.Username
	}
	if p.InstallationID != nil {
		r.InstallationID = *p.InstallationID
	}
	if p.Owner != nil {
		r.Owner = *p.Owner
	}
	if p.Details != nil {
		r.Details = *p.Details
	}
	if p.AuthToken != nil {
		r.AuthToken = *p.AuthToken
	}
	return r
}

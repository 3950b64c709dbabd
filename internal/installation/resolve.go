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

package installation

import (
	"strings"

	"github.com/polyboost/installhook/internal/github"
	"github.com/polyboost/installhook/internal/store"
)

// Resolution is the outcome of deciding which account key an installation
// belongs to.
type Resolution struct {
	// Account is the primary key to persist under: an email address for a
	// user, the login itself for an organization. Empty when Failed.
	Account string
	// Username is the installer's platform login.
	Username string
	// Failed reports that no contact email could be resolved for a user.
	Failed bool
	// Reason describes why resolution failed, for the placeholder record.
	Reason string
}

// ResolveAccount decides the account identity for an installation. It is a
// pure function: all lookups happen before the call and their results are
// passed in, so the decision tree can be tested without any collaborator.
//
// Organizations are self-referential: the org login is both account key and
// username, since orgs have no email concept. For users the email is taken
// from, in order: an existing stored record, the public profile, or the
// first primary-and-verified address on the account. Emails are lowercased
// before use as keys.
func ResolveAccount(targetType, login string, existing *store.Record, user *github.User, emails []github.Email) Resolution {
	if targetType == TargetTypeOrganization {
		return Resolution{Account: login, Username: login}
	}

	if existing != nil && existing.HasEmailAccount() {
		return Resolution{Account: strings.ToLower(existing.Account), Username: login}
	}

	if user != nil && user.Email != "" {
		return Resolution{Account: strings.ToLower(user.Email), Username: login}
	}

	for _, email := range emails {
		if email.Primary && email.Verified && email.Address != "" {
			return Resolution{Account: strings.ToLower(email.Address), Username: login}
		}
	}

	return Resolution{
		Username: login,
		Failed:   true,
		Reason:   "no public or verified primary email found",
	}
}

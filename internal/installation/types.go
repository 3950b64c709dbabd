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

// Target account types reported in installation payloads.
const (
	TargetTypeOrganization = "Organization"
	TargetTypeUser         = "User"
)

// ActionDeleted is the installation action sent when the app is
// uninstalled. Every other action (created, repositories added, and so on)
// is treated as a grant of access.
const ActionDeleted = "deleted"

// Event represents a GitHub installation or installation_repositories
// webhook event. Only the fields the handler consumes are modeled.
type Event struct {
	Action            string       `json:"action"`
	Installation      Installation `json:"installation"`
	Sender            Sender       `json:"sender"`
	Repositories      []Repository `json:"repositories"`
	RepositoriesAdded []Repository `json:"repositories_added"`
}

// Installation identifies the app installation the event concerns
type Installation struct {
	ID         int64   `json:"id"`
	Account    Account `json:"account"`
	TargetType string  `json:"target_type"`
}

// Account is the user or organization the app was installed on
type Account struct {
	Login string `json:"login"`
}

// Sender is the user who performed the action
type Sender struct {
	Login string `json:"login"`
}

// Repository names one repository granted to the installation
type Repository struct {
	Name string `json:"name"`
}

// GrantedRepositories returns the repositories named by the event:
// installation events carry them in repositories, installation_repositories
// events in repositories_added.
func (e *Event) GrantedRepositories() []Repository {
	if len(e.Repositories) > 0 {
		return e.Repositories
	}
	return e.RepositoriesAdded
}

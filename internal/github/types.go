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

package github

import "context"

// Client interface defines the contract for interacting with the GitHub API
// on behalf of one installation.
type Client interface {
	// GetUserByUsername retrieves a user's public profile.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// ListUserEmails retrieves the authenticated user's email addresses.
	ListUserEmails(ctx context.Context) ([]Email, error)
	// GetRepository retrieves repository metadata.
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
}

// ClientFactory mints installation-scoped clients. Each webhook event names
// an installation id, and every API call made while handling it must be
// authenticated as that installation.
type ClientFactory interface {
	// InstallationClient returns a client authenticated for the given
	// installation.
	InstallationClient(installationID int64) (Client, error)
}

// User represents a GitHub user's public profile
type User struct {
	Login string
	Name  string
	Email string // public profile email, often empty
}

// Email represents one address from a user's email list
type Email struct {
	Address  string
	Primary  bool
	Verified bool
}

// Repository represents repository metadata used for access logging
type Repository struct {
	Name    string
	Private bool
	Size    int // kilobytes
}

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

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v66/github"
)

// AppFactory creates installation-authenticated clients for one GitHub App.
// Construct it once at startup with the App's private key and share it; the
// per-installation transports are cheap to mint.
type AppFactory struct {
	appID      int64
	privateKey []byte
	base       http.RoundTripper
}

// NewAppFactory creates a factory for the given App id and PEM-encoded
// private key.
func NewAppFactory(appID int64, privateKey []byte) *AppFactory {
	return &AppFactory{
		appID:      appID,
		privateKey: privateKey,
		base:       http.DefaultTransport,
	}
}

// InstallationClient implements ClientFactory.
func (f *AppFactory) InstallationClient(installationID int64) (Client, error) {
	transport, err := ghinstallation.New(f.base, f.appID, installationID, f.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}
	return newClient(github.NewClient(&http.Client{Transport: transport})), nil
}

// githubClient implements the Client interface using go-github. Calls are
// single-attempt: every operation here is best-effort logging or a lookup
// whose failure the handler records and moves past, so there is nothing to
// gain from retrying inside a webhook invocation.
type githubClient struct {
	client *github.Client
}

func newClient(client *github.Client) *githubClient {
	return &githubClient{client: client}
}

// GetUserByUsername retrieves a user's public profile
func (c *githubClient) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user, _, err := c.client.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return convertUser(user), nil
}

// ListUserEmails retrieves the authenticated user's email addresses
func (c *githubClient) ListUserEmails(ctx context.Context) ([]Email, error) {
	emails := []Email{}
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := c.client.Users.ListEmails(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list user emails: %w", err)
		}

		for _, email := range page {
			emails = append(emails, Email{
				Address:  email.GetEmail(),
				Primary:  email.GetPrimary(),
				Verified: email.GetVerified(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return emails, nil
}

// GetRepository retrieves repository metadata
func (c *githubClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	repository, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return &Repository{
		Name:    repository.GetName(),
		Private: repository.GetPrivate(),
		Size:    repository.GetSize(),
	}, nil
}

// IsNotFound reports whether an error is a GitHub 404. The repository scan
// treats a 404 as "repository may be empty" rather than a failure.
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// convertUser converts a GitHub user to our domain model
func convertUser(user *github.User) *User {
	if user == nil {
		return nil
	}
	return &User{
		Login: user.GetLogin(),
		Name:  user.GetName(),
		Email: user.GetEmail(),
	}
}

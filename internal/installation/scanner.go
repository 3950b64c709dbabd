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
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/polyboost/installhook/internal/github"
)

// scanRepositories fetches each repository granted by the event and logs
// its visibility and size, confirming the installation token actually
// grants the access the payload claims. The scan is purely observational;
// nothing downstream depends on it.
//
// The budget is wall-clock time since handling began, not since the scan
// began, and is checked before every fetch. Individual fetch failures do
// not stop the scan.
func (h *Handler) scanRepositories(ctx context.Context, client github.Client, event *Event, start time.Time) {
	repos := event.GrantedRepositories()
	if len(repos) == 0 {
		return
	}

	owner := event.Installation.Account.Login
	deadline := start.Add(h.scanBudget)

	for i, repo := range repos {
		if !h.now().Before(deadline) {
			h.log.Warn("repository scan budget exhausted",
				zap.String("account", owner),
				zap.Int("scanned", i),
				zap.Int("total", len(repos)))
			return
		}

		details, err := client.GetRepository(ctx, owner, repo.Name)
		if err != nil {
			if github.IsNotFound(err) {
				// A fresh repo with no initial commit 404s on this
				// endpoint even when access is granted.
				h.log.Warn("repository not found, may be empty",
					zap.String("account", owner),
					zap.String("repository", repo.Name))
			} else {
				h.log.Error("failed to fetch repository",
					zap.String("account", owner),
					zap.String("repository", repo.Name),
					zap.Error(err))
			}
			continue
		}

		visibility := "public"
		if details.Private {
			visibility = "private"
		}
		h.log.Info("repository access granted",
			zap.String("account", owner),
			zap.String("repository", details.Name),
			zap.String("visibility", visibility),
			zap.Int("sizeKb", details.Size))
	}
}

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
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/polyboost/installhook/internal/email"
	"github.com/polyboost/installhook/internal/github"
	"github.com/polyboost/installhook/internal/store"
)

// defaultScanBudget bounds the repository access scan, measured from the
// start of event handling. The hosting platform aborts invocations around
// 29 seconds, so the scan stops well before that.
const defaultScanBudget = 20 * time.Second

const (
	welcomeSubject   = "Welcome to Polyboost"
	departureSubject = "Polyboost access removed"
)

func welcomeBody(login string) string {
	return fmt.Sprintf("Hi %s,\n\nThanks for installing the Polyboost GitHub App. "+
		"Analysis of your repositories will be available shortly.\n\nThe Polyboost Team", login)
}

func orgWelcomeBody(org string) string {
	return fmt.Sprintf("The Polyboost GitHub App is now installed for the %s organization. "+
		"Analysis of the granted repositories will be available shortly.\n\nThe Polyboost Team", org)
}

func departureBody(login string) string {
	return fmt.Sprintf("The Polyboost GitHub App was uninstalled for %s. "+
		"Stored credentials have been revoked. We're sorry to see you go.\n\nThe Polyboost Team", login)
}

// Handler orchestrates the response to installation lifecycle events. It is
// stateless across invocations: every dependency is injected once at
// startup and each event is handled independently.
type Handler struct {
	store      store.Store
	email      email.Sender
	clients    github.ClientFactory
	log        *zap.Logger
	now        func() time.Time
	scanBudget time.Duration
}

// NewHandler creates a handler wired to its collaborators.
func NewHandler(accounts store.Store, sender email.Sender, clients github.ClientFactory, log *zap.Logger) *Handler {
	return &Handler{
		store:      accounts,
		email:      sender,
		clients:    clients,
		log:        log,
		now:        time.Now,
		scanBudget: defaultScanBudget,
	}
}

// HandleInstallationChange processes one installation or
// installation_repositories event. It never reports failure to the caller:
// collaborator errors are logged (and surfaced through monitoring email)
// but the webhook response must not change, or the platform would start
// flagging the app for delivery errors.
func (h *Handler) HandleInstallationChange(ctx context.Context, eventName string, event *Event) {
	start := h.now()

	h.log.Info("installation change",
		zap.String("event", eventName),
		zap.String("action", event.Action),
		zap.String("account", event.Installation.Account.Login),
		zap.String("targetType", event.Installation.TargetType),
		zap.Int64("installationId", event.Installation.ID))

	if event.Action == ActionDeleted {
		h.handleUninstall(ctx, event)
		return
	}
	h.handleGrant(ctx, event, start)
}

// handleUninstall revokes stored install info and sends the departure
// notice. The account row itself survives with a blanked installationId:
// account history outlives revoked access.
func (h *Handler) handleUninstall(ctx context.Context, event *Event) {
	login := event.Installation.Account.Login
	requestor := event.Sender.Login
	isOrg := event.Installation.TargetType == TargetTypeOrganization

	existing, err := h.store.GetByUsername(ctx, login)
	if err != nil {
		h.log.Error("failed to look up account for uninstall",
			zap.String("username", login), zap.Error(err))
	}
	if existing == nil && isOrg {
		// Org rows are keyed by the login itself and carry no email, so
		// the username index lookup above finds nothing.
		existing, err = h.store.GetByAccount(ctx, login)
		if err != nil {
			h.log.Error("failed to look up org account for uninstall",
				zap.String("account", login), zap.Error(err))
		}
	}

	if existing != nil {
		installer := existing.Owner
		if installer == "" {
			installer = existing.Username
		}
		// Warning only. Whether this should be a hard authorization gate
		// is an open product question; today any member uninstall is
		// honored.
		if requestor != installer {
			h.log.Warn("uninstall requested by a different user than the original installer",
				zap.String("requestor", requestor),
				zap.String("installer", installer),
				zap.String("account", login))
		}
	}

	// Blank install info first to immediately cut off backend access.
	if err := h.store.DeleteByUsername(ctx, login, requestor, true); err != nil {
		h.log.Error("failed to delete installation info",
			zap.String("username", login), zap.Error(err))
	}
	if err := h.store.DeleteByAccount(ctx, store.ErrorAccount(login)); err != nil {
		h.log.Error("failed to delete placeholder record",
			zap.String("username", login), zap.Error(err))
	}

	recipient := ""
	if isOrg {
		if existing != nil && existing.Owner != "" {
			adminRecord, err := h.store.GetByUsername(ctx, existing.Owner)
			if err != nil {
				h.log.Error("failed to resolve org admin email",
					zap.String("admin", existing.Owner), zap.Error(err))
			} else if adminRecord != nil {
				recipient = adminRecord.Account
			}
		}
	} else if existing != nil && existing.HasEmailAccount() {
		recipient = existing.Account
	}

	if err := h.email.Send(ctx, departureSubject, departureBody(login), recipient); err != nil {
		h.log.Error("failed to send departure email",
			zap.String("recipient", recipient), zap.Error(err))
	}

	h.email.SendMonitoring(ctx, "app uninstalled: "+login,
		fmt.Sprintf("Installation %d for %s (%s) removed by %s.",
			event.Installation.ID, login, event.Installation.TargetType, requestor))
}

// handleGrant records a new or extended installation and sends the welcome
// notice. When no contact email can be resolved for a user, a placeholder
// row is written instead and the repository scan is skipped: access has not
// been verified.
func (h *Handler) handleGrant(ctx context.Context, event *Event, start time.Time) {
	login := event.Installation.Account.Login
	targetType := event.Installation.TargetType
	owner := event.Sender.Login
	installationID := strconv.FormatInt(event.Installation.ID, 10)

	client, err := h.clients.InstallationClient(event.Installation.ID)
	if err != nil {
		h.log.Error("failed to create installation client",
			zap.Int64("installationId", event.Installation.ID), zap.Error(err))
		h.email.SendMonitoring(ctx, "installation handling failed: "+login,
			fmt.Sprintf("Could not authenticate installation %s for %s: %v", installationID, login, err))
		return
	}

	var existing *store.Record
	var user *github.User
	var emails []github.Email
	if targetType != TargetTypeOrganization {
		if existing, err = h.store.GetByUsername(ctx, login); err != nil {
			h.log.Error("failed to look up stored account",
				zap.String("username", login), zap.Error(err))
		}
		if user, err = client.GetUserByUsername(ctx, login); err != nil {
			h.log.Error("failed to retrieve user profile",
				zap.String("username", login), zap.Error(err))
		}
		needEmails := (existing == nil || !existing.HasEmailAccount()) &&
			(user == nil || user.Email == "")
		if needEmails {
			if emails, err = client.ListUserEmails(ctx); err != nil {
				h.log.Error("failed to list user emails",
					zap.String("username", login), zap.Error(err))
			}
		}
	}

	resolution := ResolveAccount(targetType, login, existing, user, emails)

	if resolution.Failed {
		h.log.Error("no contact email resolved for user", zap.String("username", login))

		details := fmt.Sprintf("email resolution failed for %s: %s", login, resolution.Reason)
		if err := h.store.Upsert(ctx, store.ErrorAccount(login), login, details, store.Patch{
			InstallationID: &installationID,
			Owner:          &owner,
		}); err != nil {
			h.log.Error("failed to save placeholder record",
				zap.String("username", login), zap.Error(err))
		}

		h.email.SendMonitoring(ctx, "installation without resolvable email: "+login, details)
		return
	}

	details := fmt.Sprintf("app installed by %s (%s)", owner, targetType)
	if err := h.store.Upsert(ctx, resolution.Account, resolution.Username, details, store.Patch{
		InstallationID: &installationID,
		Owner:          &owner,
	}); err != nil {
		h.log.Error("failed to save installation info",
			zap.String("account", resolution.Account), zap.Error(err))
		h.email.SendMonitoring(ctx, "failed to save installation info: "+resolution.Account,
			fmt.Sprintf("Installation %s for %s could not be saved: %v", installationID, resolution.Account, err))
	} else {
		h.log.Info("installation info saved",
			zap.String("account", resolution.Account),
			zap.String("username", resolution.Username))
	}

	// Resolution succeeded, so any earlier failure placeholder is stale.
	if err := h.store.DeleteByAccount(ctx, store.ErrorAccount(login)); err != nil {
		h.log.Error("failed to clear placeholder record",
			zap.String("username", login), zap.Error(err))
	}

	h.sendWelcome(ctx, event, resolution)

	h.email.SendMonitoring(ctx, "app installed: "+resolution.Account,
		fmt.Sprintf("Installation %s for %s (%s) by %s.", installationID, login, targetType, owner))

	h.scanRepositories(ctx, client, event, start)
}

// sendWelcome routes the welcome notice. Users get it at their resolved
// address. Organizations have no address of their own, so the notice goes
// to the installing admin's stored email when one exists; otherwise the
// send is simulated.
func (h *Handler) sendWelcome(ctx context.Context, event *Event, resolution Resolution) {
	login := event.Installation.Account.Login

	if event.Installation.TargetType != TargetTypeOrganization {
		if err := h.email.Send(ctx, welcomeSubject, welcomeBody(login), resolution.Account); err != nil {
			h.log.Error("failed to send welcome email",
				zap.String("recipient", resolution.Account), zap.Error(err))
		}
		return
	}

	recipient := ""
	adminRecord, err := h.store.GetByUsername(ctx, event.Sender.Login)
	if err != nil {
		h.log.Error("failed to resolve org admin email",
			zap.String("admin", event.Sender.Login), zap.Error(err))
	} else if adminRecord != nil {
		recipient = adminRecord.Account
	}
	if err := h.email.Send(ctx, welcomeSubject, orgWelcomeBody(login), recipient); err != nil {
		h.log.Error("failed to send org welcome email",
			zap.String("recipient", recipient), zap.Error(err))
	}
}

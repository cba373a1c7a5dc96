// Package rolesync keeps guild role membership consistent with feedback
// points. Role thresholds come from the settings registry; membership
// changes are applied through a RoleAPI and audited as sync reports.
package rolesync

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/zulandar/trestle/internal/models"
	"github.com/zulandar/trestle/internal/store"
)

// RoleAPI is the slice of the guild role surface the syncer needs. The
// command layer implements it over the real Discord session; tests use a
// fake.
type RoleAPI interface {
	MemberRoleIDs(ctx context.Context, userID string) ([]string, error)
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}

// Syncer reconciles point totals against the role requirement table.
type Syncer struct {
	users    *store.Users
	settings *store.Settings
	reports  *store.SyncReports
	roles    RoleAPI
	notifier Notifier
}

// SyncerOpts holds parameters for creating a Syncer.
type SyncerOpts struct {
	Users    *store.Users
	Settings *store.Settings
	Reports  *store.SyncReports
	Roles    RoleAPI
	Notifier Notifier // optional; nil disables alerts
}

// NewSyncer creates a Syncer.
func NewSyncer(opts SyncerOpts) (*Syncer, error) {
	if opts.Users == nil {
		return nil, fmt.Errorf("rolesync: users store is required")
	}
	if opts.Settings == nil {
		return nil, fmt.Errorf("rolesync: settings store is required")
	}
	if opts.Reports == nil {
		return nil, fmt.Errorf("rolesync: reports store is required")
	}
	if opts.Roles == nil {
		return nil, fmt.Errorf("rolesync: role api is required")
	}
	return &Syncer{
		users:    opts.Users,
		settings: opts.Settings,
		reports:  opts.Reports,
		roles:    opts.Roles,
		notifier: opts.Notifier,
	}, nil
}

// Reconcile brings one user's managed roles in line with newPoints. Each
// role is attempted independently; per-role failures are recorded as sync
// reports and do not abort sibling roles. Returns the role IDs gained.
// Store-level failures surface as err.
func (s *Syncer) Reconcile(ctx context.Context, userID string, oldPoints, newPoints int) ([]string, error) {
	gained, failed, err := s.reconcileUser(ctx, uuid.NewString(), userID, newPoints)
	if err != nil {
		return nil, err
	}
	if failed > 0 {
		log.Printf("rolesync: reconcile %s: %d role change(s) failed", userID, failed)
	}
	return gained, nil
}

// ResyncAll reconciles every known user against their stored points, all
// audit rows tagged with a shared run ID. The run stops at the first user
// with a failed role change so a systemic fault (revoked permissions, a
// deleted role) does not fan out across the whole member list.
func (s *Syncer) ResyncAll(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	users, err := s.users.All()
	if err != nil {
		return runID, err
	}

	log.Printf("rolesync: resync run %s over %d user(s)", runID, len(users))
	for _, user := range users {
		_, failed, err := s.reconcileUser(ctx, runID, user.UserID, user.FeedbackPoints)
		if err != nil {
			return runID, fmt.Errorf("rolesync: resync run %s at user %s: %w", runID, user.UserID, err)
		}
		if failed > 0 {
			err := fmt.Errorf("rolesync: resync run %s: %d role change(s) failed for user %s", runID, failed, user.UserID)
			s.alert(ctx, err.Error())
			return runID, err
		}
	}
	return runID, nil
}

// reconcileUser applies the point threshold table to one user. Returns the
// roles gained and the count of failed role changes.
func (s *Syncer) reconcileUser(ctx context.Context, runID, userID string, points int) (gained []string, failed int, err error) {
	managed, err := s.settings.Roles()
	if err != nil {
		return nil, 0, err
	}

	current, err := s.roles.MemberRoleIDs(ctx, userID)
	if err != nil {
		// The member may have left the guild; record and move on.
		s.record(runID, userID, "", models.SyncActionAdd, err)
		return nil, 1, nil
	}
	has := make(map[string]bool, len(current))
	for _, id := range current {
		has[id] = true
	}

	for _, role := range managed {
		if role.RoleID == "" {
			continue
		}
		entitled := points >= role.Requirement
		switch {
		case entitled && !has[role.RoleID]:
			addErr := s.roles.AddRole(ctx, userID, role.RoleID)
			s.record(runID, userID, role.RoleID, models.SyncActionAdd, addErr)
			if addErr != nil {
				failed++
			} else {
				gained = append(gained, role.RoleID)
			}
		case !entitled && has[role.RoleID]:
			rmErr := s.roles.RemoveRole(ctx, userID, role.RoleID)
			s.record(runID, userID, role.RoleID, models.SyncActionRemove, rmErr)
			if rmErr != nil {
				failed++
			}
		}
	}
	return gained, failed, nil
}

// record writes one audit row. Audit failures are logged, never fatal.
func (s *Syncer) record(runID, userID, roleID, action string, cause error) {
	report := &models.SyncReport{RunID: runID, UserID: userID, RoleID: roleID, Action: action}
	if cause != nil {
		report.Error = cause.Error()
	}
	if err := s.reports.Record(report); err != nil {
		log.Printf("rolesync: record report for %s: %v", userID, err)
	}
}

// alert forwards a failure message to the notifier, if one is configured.
func (s *Syncer) alert(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, message); err != nil {
		log.Printf("rolesync: notify: %v", err)
	}
}

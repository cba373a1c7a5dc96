package contract

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zulandar/trestle/internal/store"
)

// User-facing rejection texts. Every refused gate explains why and, where
// actionable, what to do instead.
const (
	rejectWrongChannel = "Feedback contracts can only be created inside a feedback thread."
	rejectIsBuilder    = "You cannot create feedback contracts since you are a builder in this thread."
	rejectNotOpen      = "This feedback thread is not currently open for feedback contracts."
	rejectBlocked      = "You have been blocked from creating feedback contracts for spam or abuse."
	rejectNotBuilder   = "Only builders in this thread can interact with feedback contracts."
	rejectNoRating     = "A rating must be selected before the contract can be confirmed."
)

// Engine orchestrates the contract lifecycle. Every handler re-reads state
// from the stores at entry rather than trusting anything cached client-side,
// and the confirm path locks exactly once.
type Engine struct {
	users       *store.Users
	threads     *store.Threads
	threadUsers *store.ThreadUsers
	settings    *store.Settings
	platform    Platform
	reconciler  Reconciler
	state       *State
	now         func() time.Time
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	Users       *store.Users
	Threads     *store.Threads
	ThreadUsers *store.ThreadUsers
	Settings    *store.Settings
	Platform    Platform
	Reconciler  Reconciler
	Now         func() time.Time // defaults to time.Now
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Users == nil {
		return nil, fmt.Errorf("contract: users store is required")
	}
	if opts.Threads == nil {
		return nil, fmt.Errorf("contract: threads store is required")
	}
	if opts.ThreadUsers == nil {
		return nil, fmt.Errorf("contract: thread users store is required")
	}
	if opts.Settings == nil {
		return nil, fmt.Errorf("contract: settings store is required")
	}
	if opts.Platform == nil {
		return nil, fmt.Errorf("contract: platform is required")
	}
	if opts.Reconciler == nil {
		return nil, fmt.Errorf("contract: reconciler is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		users:       opts.Users,
		threads:     opts.Threads,
		threadUsers: opts.ThreadUsers,
		settings:    opts.Settings,
		platform:    opts.Platform,
		reconciler:  opts.Reconciler,
		state:       NewState(),
		now:         now,
	}, nil
}

// ContractView describes an open contract for rendering.
type ContractView struct {
	CreatorID   string
	Selected    *Rating
	PingUserIDs []string
}

// LockedView describes a confirmed contract for rendering.
type LockedView struct {
	CreatorID      string
	RaterID        string
	Rating         Rating
	AwardedPoints  int
	NewTotalPoints int
	GainedRoleIDs  []string
	NotifyCreator  bool
}

// CreateOutcome is the result of a create attempt. Exactly one of Rejected,
// NeedsRules, or View is meaningful.
type CreateOutcome struct {
	Rejected           string // non-empty: refusal reason, nothing mutated
	ExistingContractID string // set alongside the duplicate-contract refusal
	NeedsRules         bool   // show the rules prompt, nothing mutated
	View               *ContractView
}

// SelectOutcome is the result of a rating selection.
type SelectOutcome struct {
	Rejected string
	Stale    bool // contract no longer open; ignore silently
	View     *ContractView
}

// ConfirmOutcome is the result of a confirm attempt.
type ConfirmOutcome struct {
	Rejected string
	Stale    bool // already locked; benign no-op
	View     *LockedView
}

// Create runs the creation gates in order (wrong channel, builder, not
// open, blocked, cooldown, outstanding contract, rules) and on success
// returns the contract to render. The first failed gate wins, and nothing
// is mutated until Attach binds the posted message.
func (e *Engine) Create(ctx context.Context, channelID, userID string) (*CreateOutcome, error) {
	thread, err := e.resolveFeedbackThread(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return &CreateOutcome{Rejected: rejectWrongChannel}, nil
	}

	isBuilder, err := e.threads.IsCollaborator(thread.ThreadID, thread.OwnerID, userID)
	if err != nil {
		return nil, err
	}
	if isBuilder {
		return &CreateOutcome{Rejected: rejectIsBuilder}, nil
	}

	open, err := e.isOpenForFeedback(thread)
	if err != nil {
		return nil, err
	}
	if !open {
		return &CreateOutcome{Rejected: rejectNotOpen}, nil
	}

	blocked, err := e.users.IsBlocked(userID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return &CreateOutcome{Rejected: rejectBlocked}, nil
	}

	cooldownSec, err := e.settings.ContractCooldownSec()
	if err != nil {
		return nil, err
	}
	remaining, err := e.threadUsers.CooldownRemaining(thread.ThreadID, userID, cooldownSec, e.now())
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return &CreateOutcome{
			Rejected: fmt.Sprintf(
				"You have an active contract cooldown in this thread. Please wait `%s` before attempting to post another contract.",
				TimeDisplay(remaining)),
		}, nil
	}

	existing, err := e.threadUsers.ActiveContractMessageID(thread.ThreadID, userID)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		return &CreateOutcome{
			Rejected:           "You have an active contract in this thread. It must be fulfilled before you can create a new one.",
			ExistingContractID: existing,
		}, nil
	}

	accepted, err := e.users.RulesAccepted(userID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return &CreateOutcome{NeedsRules: true}, nil
	}

	pings, err := e.collaboratorsToPing(thread)
	if err != nil {
		return nil, err
	}

	return &CreateOutcome{View: &ContractView{CreatorID: userID, PingUserIDs: pings}}, nil
}

// Attach binds a freshly posted contract message to its creator: the
// cooldown stamp, the durable outstanding-contract pointer, and the
// in-memory selection entry. Called by the command layer once the platform
// has assigned the message ID, so a failed post burns no cooldown.
func (e *Engine) Attach(threadID, creatorID, messageID string) error {
	if err := e.threadUsers.RecordContractPosted(threadID, creatorID, e.now()); err != nil {
		return err
	}
	if err := e.threadUsers.SetActiveContractMessageID(threadID, creatorID, messageID); err != nil {
		return err
	}
	e.state.Register(messageID, creatorID)
	return nil
}

// SelectRating handles a rating pick on an open contract. Repeated picks of
// the same rating re-render identically; under concurrent picks the last
// delivered one wins.
func (e *Engine) SelectRating(ctx context.Context, channelID, messageID, userID, value string) (*SelectOutcome, error) {
	thread, err := e.platform.ResolveThread(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return &SelectOutcome{Stale: true}, nil
	}

	isBuilder, err := e.threads.IsCollaborator(thread.ThreadID, thread.OwnerID, userID)
	if err != nil {
		return nil, err
	}
	if !isBuilder {
		return &SelectOutcome{Rejected: rejectNotBuilder}, nil
	}

	rating, ok := RatingByValue(value)
	if !ok {
		return nil, fmt.Errorf("contract: unknown rating value %q", value)
	}

	if !e.state.Select(messageID, rating) {
		// Unknown to this process. Recover from the durable pointer, which
		// is the case after a restart. A contract no one holds is stale.
		creatorID, err := e.threadUsers.CreatorOfActiveContract(thread.ThreadID, messageID)
		if err != nil {
			return nil, err
		}
		if creatorID == "" {
			return &SelectOutcome{Stale: true}, nil
		}
		e.state.Register(messageID, creatorID)
		e.state.Select(messageID, rating)
	}

	sel, _ := e.state.Get(messageID)
	return &SelectOutcome{View: &ContractView{CreatorID: sel.CreatorID, Selected: sel.Selected}}, nil
}

// Confirm locks an open contract and awards points exactly once. The rating
// is re-verified from server-held state, never trusted from the client's
// rendered button. A confirm on an already-locked contract is a benign
// no-op, not an error.
func (e *Engine) Confirm(ctx context.Context, channelID, messageID, userID string) (*ConfirmOutcome, error) {
	thread, err := e.platform.ResolveThread(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return &ConfirmOutcome{Stale: true}, nil
	}

	isBuilder, err := e.threads.IsCollaborator(thread.ThreadID, thread.OwnerID, userID)
	if err != nil {
		return nil, err
	}
	if !isBuilder {
		return &ConfirmOutcome{Rejected: rejectNotBuilder}, nil
	}

	sel, known := e.state.Get(messageID)
	if !known {
		creatorID, err := e.threadUsers.CreatorOfActiveContract(thread.ThreadID, messageID)
		if err != nil {
			return nil, err
		}
		if creatorID == "" {
			return &ConfirmOutcome{Stale: true}, nil
		}
		// Open but this process never saw a selection (restart). Ask for a
		// fresh pick rather than guessing from rendered text.
		e.state.Register(messageID, creatorID)
		return &ConfirmOutcome{Rejected: rejectNoRating}, nil
	}
	if sel.Selected == nil {
		return &ConfirmOutcome{Rejected: rejectNoRating}, nil
	}

	// Single winner among interleaved confirms in this process.
	if !e.state.TryLock(messageID) {
		return &ConfirmOutcome{Stale: true}, nil
	}

	// Re-check the durable pointer after winning the lock; a cleared pointer
	// means another path already confirmed. Until the award is durably
	// recorded, every error releases the lock so a retry can confirm.
	creatorID, err := e.threadUsers.CreatorOfActiveContract(thread.ThreadID, messageID)
	if err != nil {
		e.state.Unlock(messageID)
		return nil, err
	}
	if creatorID == "" {
		return &ConfirmOutcome{Stale: true}, nil
	}

	rating := *sel.Selected
	oldPoints, err := e.users.Points(creatorID)
	if err != nil {
		e.state.Unlock(messageID)
		return nil, err
	}
	newPoints := oldPoints + rating.Points

	var gained []string
	if newPoints != oldPoints {
		if err := e.users.SetPoints(creatorID, newPoints); err != nil {
			e.state.Unlock(messageID)
			return nil, err
		}
		gained, err = e.reconciler.Reconcile(ctx, creatorID, oldPoints, newPoints)
		if err != nil {
			// Points are already persisted; reconciliation is derived from
			// current points and safe to re-trigger, so the confirm proceeds.
			log.Printf("contract: reconcile roles for %s: %v", creatorID, err)
		}
	}

	if err := e.threadUsers.ClearActiveContractMessageID(thread.ThreadID, creatorID); err != nil {
		return nil, err
	}
	e.state.Forget(messageID)

	notify, err := e.users.AllowPings(creatorID)
	if err != nil {
		return nil, err
	}

	return &ConfirmOutcome{View: &LockedView{
		CreatorID:      creatorID,
		RaterID:        userID,
		Rating:         rating,
		AwardedPoints:  rating.Points,
		NewTotalPoints: newPoints,
		GainedRoleIDs:  gained,
		NotifyCreator:  notify,
	}}, nil
}

// resolveFeedbackThread returns the thread for channelID if it is a thread
// under a registered feedback channel, or nil otherwise.
func (e *Engine) resolveFeedbackThread(ctx context.Context, channelID string) (*ThreadInfo, error) {
	thread, err := e.platform.ResolveThread(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, nil
	}
	isFeedback, err := e.settings.IsFeedbackChannel(thread.ParentChannelID)
	if err != nil {
		return nil, err
	}
	if !isFeedback {
		return nil, nil
	}
	return thread, nil
}

// isOpenForFeedback reports whether the thread carries any registered
// open-for-feedback tag.
func (e *Engine) isOpenForFeedback(thread *ThreadInfo) (bool, error) {
	openTags, err := e.settings.FeedbackTagIDs()
	if err != nil {
		return false, err
	}
	for _, tagID := range thread.TagIDs {
		for _, open := range openTags {
			if tagID == open {
				return true, nil
			}
		}
	}
	return false, nil
}

// collaboratorsToPing returns the thread's collaborators who opted into
// contract notifications.
func (e *Engine) collaboratorsToPing(thread *ThreadInfo) ([]string, error) {
	collaborators, err := e.threads.Collaborators(thread.ThreadID, thread.OwnerID, false)
	if err != nil {
		return nil, err
	}
	var pings []string
	for _, id := range collaborators {
		allow, err := e.users.AllowPings(id)
		if err != nil {
			return nil, err
		}
		if allow {
			pings = append(pings, id)
		}
	}
	return pings, nil
}

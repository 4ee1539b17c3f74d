// Package inventory holds the toy inventory screen state: the record
// snapshot, the edit dialog and pending notices. Every write goes through the
// gateway and is followed by a full reload of the collection.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/toyinv/internal/domain"
	"github.com/vbonduro/toyinv/internal/gateway"
)

// State is an immutable snapshot of the screen.
type State struct {
	Version uint64
	Toys    []*domain.Toy
	Loading bool
	Dialog  Dialog
	Notices []Notice
}

// App is the single source of truth for the inventory screen. It is safe for
// concurrent use; gateway calls are made without holding the lock.
type App struct {
	gw     gateway.Gateway
	logger *slog.Logger

	mu      sync.Mutex
	version uint64
	store   Store
	editor  Editor
	notices []Notice
	subs    map[int]func(State)
	nextSub int
}

func NewApp(gw gateway.Gateway, logger *slog.Logger) *App {
	return &App{
		gw:     gw,
		logger: logger,
		subs:   make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *App) stateLocked() State {
	notices := make([]Notice, len(a.notices))
	copy(notices, a.notices)
	return State{
		Version: a.version,
		Toys:    a.store.Toys(),
		Loading: a.store.Loading(),
		Dialog:  a.editor.Dialog(),
		Notices: notices,
	}
}

// Subscribe registers fn to be called with the new state after every change.
// The returned func removes the subscription.
func (a *App) Subscribe(fn func(State)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// TakeNotices returns and clears the pending notices.
func (a *App) TakeNotices() []Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.notices
	a.notices = nil
	return out
}

// update runs fn under the lock, bumps the version and notifies subscribers
// after the lock is released.
func (a *App) update(fn func()) {
	a.mu.Lock()
	fn()
	a.version++
	st := a.stateLocked()
	subs := make([]func(State), 0, len(a.subs))
	for _, s := range a.subs {
		subs = append(subs, s)
	}
	a.mu.Unlock()

	for _, s := range subs {
		s(st)
	}
}

func (a *App) notifyLocked(kind NoticeKind, msg string) {
	a.notices = append(a.notices, Notice{Kind: kind, Message: msg})
}

// Refresh reloads the whole collection. On failure the previous snapshot is
// kept and an error notice is queued. A result that arrives after a newer
// refresh was applied is dropped, failures included.
func (a *App) Refresh(ctx context.Context) error {
	var seq uint64
	a.update(func() { seq = a.store.begin() })

	toys, err := a.gw.List(ctx)

	var stale bool
	a.update(func() {
		_, stale = a.store.finish(seq, toys, err)
		if err != nil && !stale {
			a.notifyLocked(NoticeError, msgLoadFailed)
		}
	})

	if stale {
		a.logger.Debug("stale refresh discarded", "seq", seq, "error", err)
		return nil
	}
	if err != nil {
		a.logger.Error("refresh failed", "seq", seq, "error", err)
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	a.logger.Debug("refresh applied", "seq", seq, "toys", len(toys))
	return nil
}

func (a *App) OpenForCreate() {
	a.update(a.editor.OpenForCreate)
}

// OpenForEdit opens the dialog on the snapshot record with the given id.
func (a *App) OpenForEdit(id string) error {
	var err error
	a.update(func() {
		toy := a.store.Find(id)
		if toy == nil {
			err = ErrNotFound
			return
		}
		a.editor.OpenForEdit(toy)
	})
	return err
}

func (a *App) Cancel() {
	a.update(a.editor.Cancel)
}

// Submit validates f and sends it to the gateway: Update for an edit dialog,
// Create otherwise. On success the dialog closes and the collection is
// reloaded. On failure the dialog stays open with the submitted values.
func (a *App) Submit(ctx context.Context, f Form) error {
	var (
		dialog  Dialog
		session uint64
		verr    error
	)
	a.update(func() {
		dialog = a.editor.Dialog()
		session = a.editor.session
		if !dialog.Open {
			return
		}
		verr = f.Validate()
		var ve *ValidationError
		if errors.As(verr, &ve) {
			a.editor.keep(f, ve.Fields)
			return
		}
		a.editor.keep(f, nil)
	})
	if !dialog.Open {
		return ErrNoDialog
	}
	if verr != nil {
		return verr
	}

	fields := f.Fields()
	var err error
	if dialog.Mode == ModeEdit {
		_, err = a.gw.Update(ctx, dialog.ToyID, fields)
	} else {
		_, err = a.gw.Create(ctx, fields)
	}
	if err != nil {
		a.update(func() { a.notifyLocked(NoticeError, msgSaveFailed) })
		a.logger.Error("save toy failed", "mode", dialog.Mode.String(), "toy_id", dialog.ToyID, "error", err)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	a.update(func() {
		if dialog.Mode == ModeEdit {
			a.notifyLocked(NoticeSuccess, msgUpdated)
		} else {
			a.notifyLocked(NoticeSuccess, msgAdded)
		}
		a.editor.closeSession(session)
	})
	a.logger.Info("toy saved", "mode", dialog.Mode.String(), "toy_id", dialog.ToyID)

	return a.Refresh(ctx)
}

// Delete soft-deletes the toy by patching deleted=true, then reloads the
// collection. On failure nothing is reloaded, so the toy stays listed.
func (a *App) Delete(ctx context.Context, id string) error {
	if _, err := a.gw.Update(ctx, id, domain.SoftDelete()); err != nil {
		a.update(func() { a.notifyLocked(NoticeError, msgDeleteFailed) })
		a.logger.Error("delete toy failed", "toy_id", id, "error", err)
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	a.update(func() { a.notifyLocked(NoticeSuccess, msgDeleted) })
	a.logger.Info("toy deleted", "toy_id", id)

	return a.Refresh(ctx)
}

package proposal

import (
	"context"
	"time"
)

// Sleeper waits between effects. It must return early when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

// TimerSleeper waits on a real timer.
func TimerSleeper() Sleeper { return timerSleeper{} }

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Applied describes an effect after it reached the stores.
type Applied struct {
	Effect   Effect
	Entry    *ChatEntry
	Section  *Section
	Document *DocumentRecord
	// Changed is false when the stores ignored the effect (unknown section id,
	// document already analyzed).
	Changed bool
}

// Observer is told about every applied effect, in order.
type Observer interface {
	EffectApplied(ctx context.Context, s *Session, applied Applied)
}

type ObserverFunc func(ctx context.Context, s *Session, applied Applied)

func (f ObserverFunc) EffectApplied(ctx context.Context, s *Session, applied Applied) {
	f(ctx, s, applied)
}

// Observers fans one applied effect out to several observers, in order.
type Observers []Observer

func (o Observers) EffectApplied(ctx context.Context, s *Session, applied Applied) {
	for _, observer := range o {
		observer.EffectApplied(ctx, s, applied)
	}
}

// Runner executes plans produced by the Driver against a session.
//
// A turn holds the session's turn lock from planning until its last effect,
// so the next turn is planned against a cursor whose effects have landed.
type Runner struct {
	driver   *Driver
	sleeper  Sleeper
	observer Observer
}

func NewRunner(driver *Driver, sleeper Sleeper, observer Observer) *Runner {
	if sleeper == nil {
		sleeper = TimerSleeper()
	}
	return &Runner{driver: driver, sleeper: sleeper, observer: observer}
}

func (r *Runner) Driver() *Driver { return r.driver }

// AcceptMessage records the user entry. It is visible before any reply.
func (r *Runner) AcceptMessage(ctx context.Context, s *Session, text string) ChatEntry {
	entry := s.Transcript.Append(RoleUser, text)
	r.notify(ctx, s, Applied{
		Effect:  Effect{Kind: EffectAppendEntry, Role: RoleUser, Content: text},
		Entry:   &entry,
		Changed: true,
	})
	return entry
}

// AppendSystem records a system entry outside any scripted turn.
func (r *Runner) AppendSystem(ctx context.Context, s *Session, text string) ChatEntry {
	entry := s.Transcript.Append(RoleSystem, text)
	r.notify(ctx, s, Applied{
		Effect:  Effect{Kind: EffectAppendEntry, Role: RoleSystem, Content: text},
		Entry:   &entry,
		Changed: true,
	})
	return entry
}

// AcceptUpload registers the document with analyzed=false.
func (r *Runner) AcceptUpload(ctx context.Context, s *Session, meta FileMeta) DocumentRecord {
	doc := s.Registry.Upload(meta)
	r.notify(ctx, s, Applied{
		Effect:   Effect{Kind: EffectRegisterDocument, DocumentID: doc.ID},
		Document: &doc,
		Changed:  true,
	})
	return doc
}

// MessageTurn plans and runs the scripted reaction to an accepted message.
func (r *Runner) MessageTurn(ctx context.Context, s *Session) (Plan, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	plan, next := r.driver.PlanMessage(s.State())
	s.setState(next)
	return plan, r.run(ctx, s, plan)
}

// UploadTurn plans and runs the reaction to an accepted document.
func (r *Runner) UploadTurn(ctx context.Context, s *Session, documentID string) (Plan, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	plan, next := r.driver.PlanUpload(s.State(), documentID)
	s.setState(next)
	return plan, r.run(ctx, s, plan)
}

// AdvanceOnMessage is AcceptMessage followed by MessageTurn, blocking until
// every effect has been applied.
func (r *Runner) AdvanceOnMessage(ctx context.Context, s *Session, text string) (ChatEntry, error) {
	entry := r.AcceptMessage(ctx, s, text)
	_, err := r.MessageTurn(ctx, s)
	return entry, err
}

// AdvanceOnUpload is AcceptUpload followed by UploadTurn.
func (r *Runner) AdvanceOnUpload(ctx context.Context, s *Session, meta FileMeta) (DocumentRecord, error) {
	doc := r.AcceptUpload(ctx, s, meta)
	_, err := r.UploadTurn(ctx, s, doc.ID)
	return doc, err
}

func (r *Runner) run(ctx context.Context, s *Session, plan Plan) error {
	for _, e := range plan.Effects {
		if err := r.sleeper.Sleep(ctx, e.Delay); err != nil {
			return err
		}
		r.notify(ctx, s, apply(s, e))
	}
	return nil
}

func apply(s *Session, e Effect) Applied {
	applied := Applied{Effect: e}

	switch e.Kind {
	case EffectAppendEntry:
		entry := s.Transcript.Append(e.Role, e.Content)
		applied.Entry = &entry
		applied.Changed = true
	case EffectPatchSection:
		applied.Changed = s.Board.Patch(e.Patch)
		if sec, ok := s.Board.Get(e.Patch.SectionID); ok {
			applied.Section = &sec
		}
	case EffectInsertSection:
		sec := s.Board.Insert(e.Title)
		applied.Section = &sec
		applied.Changed = true
	case EffectMarkAnalyzed:
		applied.Changed = s.Registry.MarkAnalyzed(e.DocumentID)
		if doc, ok := s.Registry.Get(e.DocumentID); ok {
			applied.Document = &doc
		}
	}

	return applied
}

func (r *Runner) notify(ctx context.Context, s *Session, applied Applied) {
	if r.observer != nil {
		r.observer.EffectApplied(ctx, s, applied)
	}
}

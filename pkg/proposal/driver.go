package proposal

import "time"

// ConversationState is the cursor over the script. It only moves forward.
type ConversationState struct {
	StepIndex int `json:"step_index"`
}

// Delays is the fixed schedule between scripted effects.
type Delays struct {
	Reply        time.Duration // user entry -> assistant reply (message turn)
	Notice       time.Duration // assistant reply -> system notice
	Patch        time.Duration // assistant reply -> patches, when the step has no notice
	Analysis     time.Duration // upload -> analyzed flag and assistant reply
	UploadNotice time.Duration // upload assistant reply -> system notice
}

// DefaultDelays mirrors the timings of the demo front end.
func DefaultDelays() Delays {
	return Delays{
		Reply:        1500 * time.Millisecond,
		Notice:       1500 * time.Millisecond,
		Patch:        1000 * time.Millisecond,
		Analysis:     2000 * time.Millisecond,
		UploadNotice: 2000 * time.Millisecond,
	}
}

type EffectKind string

const (
	EffectAppendEntry   EffectKind = "append_entry"
	EffectPatchSection  EffectKind = "patch_section"
	EffectInsertSection EffectKind = "insert_section"
	EffectMarkAnalyzed  EffectKind = "mark_analyzed"

	// only reported to observers; uploads are registered before planning
	EffectRegisterDocument EffectKind = "register_document"
)

// Effect is one state change. Delay is measured from the previous effect of the same plan.
type Effect struct {
	Kind  EffectKind
	Delay time.Duration

	Role    Role
	Content string

	Patch SectionPatch
	Title string

	DocumentID string
}

// Plan is the ordered reaction to one turn.
type Plan struct {
	Step    int
	Effects []Effect
}

func (p Plan) Empty() bool { return len(p.Effects) == 0 }

// Driver turns the current cursor into a plan. It holds no session state;
// callers pass the ConversationState in and keep the one handed back.
type Driver struct {
	script Script
	delays Delays
}

func NewDriver(script Script, delays Delays) *Driver {
	return &Driver{script: script, delays: delays}
}

func (d *Driver) Script() Script { return d.script }

// Done reports whether the cursor has run off the end of the tape.
func (d *Driver) Done(state ConversationState) bool {
	return state.StepIndex >= d.script.Len()
}

// PlanMessage computes the scripted reaction to a text or voice turn. The
// user entry itself is recorded by the caller before the plan runs.
//
// The cursor advances by one for every message turn, stopping at the end of
// the tape. Past the end the plan is empty.
func (d *Driver) PlanMessage(state ConversationState) (Plan, ConversationState) {
	plan := Plan{Step: state.StepIndex}
	next := d.advance(state)

	step, ok := d.script.At(state.StepIndex)
	if !ok || step.AssistantReply == "" {
		return plan, next
	}

	plan.Effects = append(plan.Effects, appendEffect(d.delays.Reply, RoleAssistant, step.AssistantReply))

	switch {
	case step.SystemNotice != "":
		plan.Effects = append(plan.Effects, appendEffect(d.delays.Notice, RoleSystem, step.SystemNotice))
		plan.Effects = append(plan.Effects, sectionEffects(step, 0)...)
	case len(step.Patches) > 0 || step.NewSection != nil:
		plan.Effects = append(plan.Effects, sectionEffects(step, d.delays.Patch)...)
	}

	return plan, next
}

// PlanUpload computes the reaction to a document upload. The document is
// registered by the caller; the plan flips its analyzed flag after the
// analysis delay. The cursor only advances when the current step has an
// assistant reply to give.
func (d *Driver) PlanUpload(state ConversationState, documentID string) (Plan, ConversationState) {
	plan := Plan{
		Step: state.StepIndex,
		Effects: []Effect{{
			Kind:       EffectMarkAnalyzed,
			Delay:      d.delays.Analysis,
			DocumentID: documentID,
		}},
	}

	step, ok := d.script.At(state.StepIndex)
	if !ok || step.AssistantReply == "" {
		return plan, state
	}

	plan.Effects = append(plan.Effects, appendEffect(0, RoleAssistant, step.AssistantReply))
	if step.SystemNotice != "" {
		plan.Effects = append(plan.Effects, appendEffect(d.delays.UploadNotice, RoleSystem, step.SystemNotice))
		plan.Effects = append(plan.Effects, sectionEffects(step, 0)...)
	}

	return plan, d.advance(state)
}

func (d *Driver) advance(state ConversationState) ConversationState {
	if state.StepIndex < d.script.Len() {
		state.StepIndex++
	}
	return state
}

func appendEffect(delay time.Duration, role Role, content string) Effect {
	return Effect{Kind: EffectAppendEntry, Delay: delay, Role: role, Content: content}
}

// sectionEffects emits the step's patches followed by its new section. Only
// the first effect carries the delay.
func sectionEffects(step Step, delay time.Duration) []Effect {
	var out []Effect
	for _, p := range step.Patches {
		out = append(out, Effect{Kind: EffectPatchSection, Patch: p})
	}
	if step.NewSection != nil {
		out = append(out, Effect{Kind: EffectInsertSection, Title: step.NewSection.Title})
	}
	if len(out) > 0 {
		out[0].Delay = delay
	}
	return out
}

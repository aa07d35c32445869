package proposal

import (
	"strconv"
	"sync"
)

// Board holds the ordered proposal sections of one session.
//
// Patch and Remove never fail: an unknown id, or a section that cannot be
// deleted, leaves the board untouched and reports false.
type Board struct {
	mu       sync.RWMutex
	sections []Section
	seeded   bool
	nextID   int
}

func NewBoard() *Board {
	return &Board{nextID: 1}
}

// Seed installs the baseline sections. Only the first call has an effect.
func (b *Board) Seed(initial []Section) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seeded {
		return false
	}
	b.seeded = true

	b.sections = make([]Section, 0, len(initial))
	for _, s := range initial {
		s.Sources = append([]string(nil), s.Sources...)
		b.sections = append(b.sections, s)
		b.bumpNextID(s.ID)
	}
	return true
}

// Patch applies the provided fields of p and marks the section machine-authored.
func (b *Board) Patch(p SectionPatch) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(p.SectionID)
	if i < 0 {
		return false
	}

	s := &b.sections[i]
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	s.AIGenerated = true
	return true
}

// Insert appends a custom section. Ids come from a counter that only grows,
// so an id is never handed out twice even after removals.
func (b *Board) Insert(title string) Section {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Section{
		ID:          strconv.Itoa(b.nextID),
		Title:       title,
		Status:      StatusInProgress,
		AIGenerated: true,
		IsCustom:    true,
		CanDelete:   true,
	}
	b.nextID++
	b.sections = append(b.sections, s)
	return s
}

// Remove deletes a deletable section, keeping the order of the rest.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 || !b.sections[i].CanDelete {
		return false
	}
	b.sections = append(b.sections[:i], b.sections[i+1:]...)
	return true
}

// Get returns a copy of one section.
func (b *Board) Get(id string) (Section, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i := b.indexOf(id)
	if i < 0 {
		return Section{}, false
	}
	return cloneSection(b.sections[i]), true
}

// All returns a snapshot in board order.
func (b *Board) All() []Section {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Section, len(b.sections))
	for i, s := range b.sections {
		out[i] = cloneSection(s)
	}
	return out
}

func (b *Board) Progress() Progress {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := Progress{Total: len(b.sections)}
	for _, s := range b.sections {
		if s.Status == StatusComplete {
			p.Completed++
		}
	}
	return p
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sections)
}

func (b *Board) indexOf(id string) int {
	for i := range b.sections {
		if b.sections[i].ID == id {
			return i
		}
	}
	return -1
}

// bumpNextID keeps the counter above every numeric id seen so far.
func (b *Board) bumpNextID(id string) {
	if n, err := strconv.Atoi(id); err == nil && n >= b.nextID {
		b.nextID = n + 1
	}
}

func cloneSection(s Section) Section {
	s.Sources = append([]string(nil), s.Sources...)
	return s
}

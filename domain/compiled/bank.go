package compiled

import (
	"sync"

	"github.com/soocke/corrmatch/domain/angle"
	"github.com/soocke/corrmatch/domain/template"
)

// RotationBank holds a pyramid level's angle grid plus one write-once
// slot per angle index. Plan(idx) computes and publishes the masked
// rotation on first access; sync.Once runs that computation exactly
// once per slot, and concurrent callers block until it finishes, so no
// caller ever sees a partially built plan.
type RotationBank struct {
	Grid  angle.Grid
	tmpl  template.Template
	slots []bankSlot
}

type bankSlot struct {
	once sync.Once
	plan template.MaskedPlan
}

func newRotationBank(tmpl template.Template, grid angle.Grid) *RotationBank {
	return &RotationBank{Grid: grid, tmpl: tmpl, slots: make([]bankSlot, grid.Len())}
}

// Plan returns the MaskedPlan for angle index idx, computing it on
// first access.
func (b *RotationBank) Plan(idx int) *template.MaskedPlan {
	s := &b.slots[idx]
	s.once.Do(func() {
		s.plan = template.CompileMasked(b.tmpl, b.Grid.Angle(idx))
	})
	return &s.plan
}

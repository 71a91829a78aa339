package compiled

import (
	"sync"
	"testing"

	"github.com/soocke/corrmatch/domain/template"
)

func testTemplate(t *testing.T) template.Template {
	t.Helper()
	pix := make([]uint8, 16*16)
	for i := range pix {
		pix[i] = uint8(i % 256)
	}
	tpl, err := template.New(16, 16, pix)
	if err != nil {
		t.Fatalf("template.New: %v", err)
	}
	return tpl
}

func TestCompileUnrotated_BuildsPlanPerLevel(t *testing.T) {
	ct, err := CompileUnrotated(testTemplate(t), Config{MaxLevels: 3})
	if err != nil {
		t.Fatalf("CompileUnrotated: %v", err)
	}
	if ct.NumLevels() != 3 {
		t.Fatalf("expected 3 levels, got %d", ct.NumLevels())
	}
	for i, lvl := range ct.Levels {
		if lvl.Unmasked == nil || lvl.Bank != nil {
			t.Fatalf("level %d: expected unmasked plan only", i)
		}
	}
}

func TestCompile_RotationBankLazyAndWriteOnce(t *testing.T) {
	ct, err := Compile(testTemplate(t), Config{MaxLevels: 2, CoarseStepDeg: 30, MinStepDeg: 5})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i, lvl := range ct.Levels {
		if lvl.Bank == nil || lvl.Unmasked != nil {
			t.Fatalf("level %d: expected rotation bank only", i)
		}
	}
	bank := ct.Levels[0].Bank
	if bank.Grid.Len() == 0 {
		t.Fatalf("expected non-empty angle grid")
	}

	// Concurrent access to the same slot must publish exactly one plan.
	var wg sync.WaitGroup
	plans := make([]*template.MaskedPlan, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plans[i] = bank.Plan(0)
		}(i)
	}
	wg.Wait()
	first := plans[0]
	for i, p := range plans {
		if p != first {
			t.Fatalf("slot %d: expected identical published plan pointer, got distinct", i)
		}
	}
}

func TestCompile_StepShrinksTowardFinerLevels(t *testing.T) {
	ct, err := Compile(testTemplate(t), Config{MaxLevels: 3, CoarseStepDeg: 20, MinStepDeg: 2})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	coarsest := ct.CoarsestLevel()
	prevStep := ct.LevelStepDeg(coarsest)
	for lvl := coarsest - 1; lvl >= 0; lvl-- {
		step := ct.LevelStepDeg(lvl)
		if step > prevStep {
			t.Fatalf("expected step to shrink or stay equal toward finer levels, level %d step %v > previous %v", lvl, step, prevStep)
		}
		prevStep = step
	}
}

func TestConfig_ValidateRejectsBadRanges(t *testing.T) {
	if err := (Config{MaxLevels: 0}).Validate(false); err == nil {
		t.Fatalf("expected error for max_levels < 1")
	}
	if err := (Config{MaxLevels: 1, CoarseStepDeg: 5, MinStepDeg: 10}).Validate(true); err == nil {
		t.Fatalf("expected error when min_step_deg > coarse_step_deg")
	}
	if err := (Config{MaxLevels: 1, CoarseStepDeg: 0, MinStepDeg: 1}).Validate(true); err == nil {
		t.Fatalf("expected error for coarse_step_deg <= 0")
	}
}

package expr

import "testing"

func TestEntityTableAssignsSequentialIds(t *testing.T) {
	var table EntityTable
	a := table.Add(FreePoint{})
	b := table.Add(FreeReal{})
	c := table.Add(PointOnLine{Line: 0})

	if a != 0 || b != 1 || c != 2 {
		t.Errorf("expected sequential ids 0,1,2; got %d,%d,%d", a, b, c)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	if _, ok := table.Kinds[a].(FreePoint); !ok {
		t.Errorf("Kinds[0] should be FreePoint, got %T", table.Kinds[a])
	}
}

func TestRuleKindVariants(t *testing.T) {
	// Compile-time-ish sanity: every RuleKind variant implements the
	// marker interface, and Invert/Alternative can nest Rule values.
	var kinds = []RuleKind{
		PointEq{A: 0, B: 1},
		NumberEq{A: 0, B: 1},
		Lt{A: 0, B: 1},
		Gt{A: 0, B: 1},
		Bias{},
		Invert{Inner: Rule{Kind: Bias{}}},
		Alternative{Items: []Rule{{Kind: Lt{A: 0, B: 1}}, {Kind: Gt{A: 0, B: 1}}}},
	}
	if len(kinds) != 7 {
		t.Fatalf("expected 7 rule kind variants exercised, got %d", len(kinds))
	}
}

package classify

import "testing"

func f(v float64) *float64 { return &v }

func TestClassifyOD(t *testing.T) {
	c := NewDimensionClassifier(nil)

	tests := []struct {
		name     string
		od       *float64
		grade    string
		expected string
	}{
		{"carbon 10 inch", f(273.0), "CS & AS", `10"`},
		{"carbon duplicate metric spelling", f(609.6), "CS & AS", `24"`},
		{"carbon other spelling", f(610.0), "CS & AS", `24"`},
		{"stainless uses carbon table", f(114.3), "SS", `4"`},
		{"is family", f(21.43), "IS", `1/2"`},
		{"tube family", f(25.40), "Tubes", `1"`},
		{"carbon no match", f(100.0), "CS & AS", NonStandardOD},
		{"is no match", f(100.0), "IS", NonStandardOD},
		{"tube no match", f(100.0), "Tubes", UnknownOD},
		{"nil od carbon", nil, "CS & AS", NonStandardOD},
		{"nil od tube", nil, "Tubes", UnknownOD},
		{"empty grade", f(273.0), "", UnknownGrade},
		{"unknown grade falls back to carbon table", f(273.0), "Unknown", `10"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClassifyOD(tt.od, tt.grade); got != tt.expected {
				t.Errorf("ClassifyOD(%v, %q) = %q, want %q", tt.od, tt.grade, got, tt.expected)
			}
		})
	}
}

func TestClassifyWTBandPrecedence(t *testing.T) {
	c := NewDimensionClassifier(nil)

	// STD and SCH 40 share the (273.0, 9.27) reference point; the fixed
	// evaluation order means STD wins.
	if got := c.ClassifyWT(f(273.0), f(9.27), "CS & AS"); got != "STD" {
		t.Fatalf("expected STD for shared STD/SCH 40 point, got %q", got)
	}

	// Same story for XS and SCH 80 at small sizes.
	if got := c.ClassifyWT(f(60.3), f(5.54), "CS & AS"); got != "XS" {
		t.Fatalf("expected XS for shared XS/SCH 80 point, got %q", got)
	}
}

func TestClassifyWTDeterminism(t *testing.T) {
	c := NewDimensionClassifier(nil)

	first := c.ClassifyWT(f(273.0), f(9.27), "CS & AS")
	for i := 0; i < 100; i++ {
		if got := c.ClassifyWT(f(273.0), f(9.27), "CS & AS"); got != first {
			t.Fatalf("run %d returned %q, first run returned %q", i, got, first)
		}
	}
}

func TestClassifyWT(t *testing.T) {
	c := NewDimensionClassifier(nil)

	tests := []struct {
		name     string
		od, wt   *float64
		grade    string
		expected string
	}{
		{"carbon within tolerance", f(273.5), f(9.30), "CS & AS", "STD"},
		{"carbon od outside tolerance", f(274.5), f(9.27), "CS & AS", NonSTD},
		{"carbon wt outside tolerance", f(273.0), f(9.48), "CS & AS", NonSTD},
		{"carbon sch 160", f(219.1), f(23.01), "CS & AS", "SCH 160"},
		{"carbon no band", f(273.0), f(50.0), "CS & AS", NonSTD},
		{"stainless 5S before 10S on shared point", f(10.3), f(1.24), "SS", "Schedule 5S"},
		{"stainless 80S", f(273.0), f(15.09), "SS", "Schedule 80S"},
		{"is medium", f(60.30), f(3.65), "IS", "IS 1239: Medium (B-Class)"},
		{"is heavy-only wall at half inch", f(21.3), f(3.2), "IS", "IS 1239: Heavy (C-Class)"},
		{"is no band", f(60.30), f(9.0), "IS", NonISStandard},
		{"tube exact match", f(50.80), f(3.05), "Tubes", "Medium Wall Tube"},
		{"tube near miss gets no tolerance", f(50.81), f(3.05), "Tubes", NonStandardTube},
		{"tube extra heavy wall", f(101.60), f(4.78), "Tubes", NonStandardTube},
		{"nil wt carbon", f(273.0), nil, "CS & AS", NonSTD},
		{"nil od is", nil, f(3.65), "IS", NonISStandard},
		{"nil pair tube", nil, nil, "Tubes", NonStandardTube},
		{"empty grade", f(273.0), f(9.27), "", GradeUnknown},
		{"unrecognized family", f(273.0), f(9.27), "Unknown", GradeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClassifyWT(tt.od, tt.wt, tt.grade); got != tt.expected {
				t.Errorf("ClassifyWT(%v, %v, %q) = %q, want %q", tt.od, tt.wt, tt.grade, got, tt.expected)
			}
		})
	}
}

func TestSentinelTotality(t *testing.T) {
	c := NewDimensionClassifier(nil)

	ods := []*float64{nil, f(0), f(-5), f(273.0), f(1e9)}
	wts := []*float64{nil, f(0), f(-1), f(9.27), f(1e9)}
	grades := []string{"", "CS & AS", "SS", "IS", "Tubes", "Unknown", "garbage"}

	for _, od := range ods {
		for _, wt := range wts {
			for _, grade := range grades {
				if got := c.ClassifyOD(od, grade); got == "" {
					t.Fatalf("ClassifyOD returned empty string for od=%v grade=%q", od, grade)
				}
				if got := c.ClassifyWT(od, wt, grade); got == "" {
					t.Fatalf("ClassifyWT returned empty string for od=%v wt=%v grade=%q", od, wt, grade)
				}
			}
		}
	}
}

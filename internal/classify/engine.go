package classify

import (
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/refdata"
)

// Engine bundles the two classifiers for pipeline use.
type Engine struct {
	Grades     *GradeClassifier
	Dimensions *DimensionClassifier
}

// NewEngine wires a grade mapping (may be nil) and reference tables
// (nil means built-in) into a ready-to-use engine.
func NewEngine(mapping map[string]string, tables *refdata.Tables) *Engine {
	return &Engine{
		Grades:     NewGradeClassifier(mapping),
		Dimensions: NewDimensionClassifier(tables),
	}
}

// Annotate fills Grade, ODCategory and WTSchedule on the record in
// place. The grade is stored in its combined form ("CS & AS", "Tubes")
// since that is what the dimension tables and heatmap axes key on.
func (e *Engine) Annotate(rec *domain.InventoryRecord) {
	rec.Grade = e.Grades.Classify(rec.Specification, true)
	rec.ODCategory = e.Dimensions.ClassifyOD(rec.OD, rec.Grade)
	rec.WTSchedule = e.Dimensions.ClassifyWT(rec.OD, rec.WT, rec.Grade)
}

// AnnotateAll annotates every record in the slice.
func (e *Engine) AnnotateAll(records []domain.InventoryRecord) {
	for i := range records {
		e.Annotate(&records[i])
	}
}

// Package scoring computes the derived total score and performance
// band for a marks record. It is the single authority for the formula;
// the database trigger guard and the reconciliation job both compare
// against it.
package scoring

// Category is the performance band derived from a total score.
type Category string

const (
	CategoryRed    Category = "red"    // at risk, eligible for supplementary instruction
	CategoryYellow Category = "yellow" // borderline
	CategoryGreen  Category = "green"  // satisfactory
)

// Band thresholds. Comparisons are strict at both edges: exactly 20.0
// is yellow and exactly 40.0 is green.
const (
	YellowThreshold = 20.0
	GreenThreshold  = 40.0
)

// Compute derives the total score and category from the four raw
// inputs. The three internal assessments are averaged, the assignment
// score is added on top. The average keeps fractional precision and
// negative inputs propagate arithmetically; no rounding or clamping.
func Compute(ia1, ia2, ia3, assignment int) (float64, Category) {
	total := float64(ia1+ia2+ia3)/3.0 + float64(assignment)
	return total, Categorize(total)
}

// Categorize maps a total score to its band.
func Categorize(total float64) Category {
	switch {
	case total < YellowThreshold:
		return CategoryRed
	case total < GreenThreshold:
		return CategoryYellow
	default:
		return CategoryGreen
	}
}

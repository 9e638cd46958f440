package database

import (
	"fmt"
	"log"

	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/services/scoring"
	"gorm.io/gorm"
)

// The trigger guard is optional defense-in-depth: the marks service is
// the authority for total_score/category, and this trigger recomputes
// the same formula on every insert/update so rows written by hand (psql,
// bulk imports) cannot carry stale derived fields. The function must
// stay in lockstep with scoring.Compute; VerifyMarksTrigger asserts
// that at startup and the app refuses to boot on disagreement.
const marksTriggerFn = `
CREATE OR REPLACE FUNCTION marks_derive_fields() RETURNS trigger AS $$
BEGIN
    NEW.total_score := (NEW.ia1 + NEW.ia2 + NEW.ia3) / 3.0 + NEW.assignment;
    NEW.category := CASE
        WHEN NEW.total_score < 20 THEN 'red'
        WHEN NEW.total_score < 40 THEN 'yellow'
        ELSE 'green'
    END;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;
`

const marksTriggerDDL = `
DROP TRIGGER IF EXISTS marks_derive_fields_trg ON marks;
CREATE TRIGGER marks_derive_fields_trg
    BEFORE INSERT OR UPDATE ON marks
    FOR EACH ROW EXECUTE FUNCTION marks_derive_fields();
`

// InstallMarksTrigger installs (or replaces) the derive trigger on the
// marks table. Safe to re-run.
func (s *GORMStore) InstallMarksTrigger() error {
	if err := s.db.Exec(marksTriggerFn).Error; err != nil {
		return fmt.Errorf("failed to create marks trigger function: %w", err)
	}
	if err := s.db.Exec(marksTriggerDDL).Error; err != nil {
		return fmt.Errorf("failed to create marks trigger: %w", err)
	}
	log.Println("Marks derive trigger installed")
	return nil
}

// VerifyMarksTrigger inserts a probe marks row inside a transaction
// that is always rolled back and checks that the trigger-computed
// derived fields match scoring.Compute for the same inputs. A mismatch
// means the SQL formula has drifted from the application formula.
func (s *GORMStore) VerifyMarksTrigger() error {
	probes := []struct {
		ia1, ia2, ia3, assignment int
	}{
		{5, 5, 5, 2},     // red
		{20, 20, 20, 0},  // boundary: exactly 20 is yellow
		{30, 30, 30, 10}, // boundary: exactly 40 is green
		{10, 10, 11, 7},  // fractional average
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		student := model.Student{USN: "__trigger_probe__", Name: "trigger probe"}
		if err := tx.Create(&student).Error; err != nil {
			return fmt.Errorf("failed to create probe student: %w", err)
		}

		for _, p := range probes {
			m := model.Marks{
				StudentID:  student.ID,
				CourseCode: "__PROBE__",
				IA1:        p.ia1,
				IA2:        p.ia2,
				IA3:        p.ia3,
				Assignment: p.assignment,
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("failed to create probe marks: %w", err)
			}

			// Read back what the trigger wrote.
			var persisted model.Marks
			if err := tx.First(&persisted, m.ID).Error; err != nil {
				return fmt.Errorf("failed to read probe marks: %w", err)
			}

			wantTotal, wantCategory := scoring.Compute(p.ia1, p.ia2, p.ia3, p.assignment)
			if persisted.Category != string(wantCategory) || !floatsClose(persisted.TotalScore, wantTotal) {
				return fmt.Errorf(
					"trigger disagrees with scoring engine for (%d,%d,%d,%d): trigger=(%v,%s) app=(%v,%s)",
					p.ia1, p.ia2, p.ia3, p.assignment,
					persisted.TotalScore, persisted.Category, wantTotal, wantCategory)
			}

			if err := tx.Delete(&model.Marks{}, m.ID).Error; err != nil {
				return fmt.Errorf("failed to delete probe marks: %w", err)
			}
		}

		// Discard the probe rows regardless of outcome.
		return gorm.ErrInvalidTransaction
	})

	// The sentinel rollback is expected; anything else is a real failure.
	if err != nil && err != gorm.ErrInvalidTransaction {
		return err
	}
	log.Println("Marks trigger verified against scoring engine")
	return nil
}

func floatsClose(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

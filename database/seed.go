package database

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/services/scoring"
	"github.com/sahilchouksey/dpms-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminAccount(); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedTeachers(); err != nil {
		return fmt.Errorf("failed to seed teachers: %w", err)
	}

	if err := s.SeedStudents(); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	if err := s.SeedMarks(); err != nil {
		return fmt.Errorf("failed to seed marks: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminAccount creates the default admin staff account
func (s *Seeder) SeedAdminAccount() error {
	var count int64
	if err := s.db.Model(&model.StaffAccount{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Admin account already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin account creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.StaffAccount{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         "admin",
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin account: %s", adminEmail)
	return nil
}

// SeedCourses populates the course registry
func (s *Seeder) SeedCourses() error {
	sem := 5
	courses := []model.Course{
		{Code: "CS501", Name: "Database Systems", Credit: 4, Semester: &sem},
		{Code: "CS502", Name: "Operating Systems", Credit: 4, Semester: &sem},
		{Code: "CS503", Name: "Computer Networks", Credit: 3, Semester: &sem},
	}

	for _, course := range courses {
		var existing model.Course
		err := s.db.Where("code = ?", course.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.db.Create(&course).Error; err != nil {
			return err
		}
		log.Printf("✅ Created course: %s (%s)", course.Code, course.Name)
	}
	return nil
}

// SeedTeachers creates sample teachers with teaching assignments
func (s *Seeder) SeedTeachers() error {
	sem := 5
	teachers := []struct {
		tid     string
		name    string
		courses []string
	}{
		{"T001", "Anita Deshpande", []string{"CS501"}},
		{"T002", "Ravi Kulkarni", []string{"CS502", "CS503"}},
		{"T003", "Meera Iyer", []string{"CS503"}},
	}

	for _, t := range teachers {
		var teacher model.Teacher
		err := s.db.Where("tid = ?", t.tid).First(&teacher).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			teacher = model.Teacher{TID: t.tid, Name: t.name}
			if err := s.db.Create(&teacher).Error; err != nil {
				return err
			}
			log.Printf("✅ Created teacher: %s (%s)", t.tid, t.name)
		} else if err != nil {
			return err
		}

		for _, code := range t.courses {
			var count int64
			if err := s.db.Model(&model.Teaches{}).
				Where("teacher_id = ? AND course_code = ?", teacher.ID, code).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			teaches := model.Teaches{
				TeacherID:  teacher.ID,
				CourseCode: code,
				Semester:   &sem,
				Section:    "A",
			}
			if err := s.db.Create(&teaches).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedStudents creates sample students
func (s *Seeder) SeedStudents() error {
	sem := 5
	students := []model.Student{
		{USN: "1MS21CS001", Name: "Aarav Sharma", Semester: &sem, Section: "A"},
		{USN: "1MS21CS002", Name: "Diya Patel", Semester: &sem, Section: "A"},
		{USN: "1MS21CS003", Name: "Karan Reddy", Semester: &sem, Section: "A"},
		{USN: "1MS21CS004", Name: "Sneha Nair", Semester: &sem, Section: "B"},
		{USN: "1MS21CS005", Name: "Vikram Joshi", Semester: &sem, Section: "B"},
		{USN: "1MS21CS006", Name: "Priya Menon", Semester: &sem, Section: "B"},
	}

	for _, student := range students {
		var existing model.Student
		err := s.db.Where("usn = ?", student.USN).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.db.Create(&student).Error; err != nil {
			return err
		}
		log.Printf("✅ Created student: %s (%s)", student.USN, student.Name)
	}
	return nil
}

// SeedMarks records sample marks covering all three bands. Derived
// fields are computed the same way the marks service computes them.
func (s *Seeder) SeedMarks() error {
	rows := []struct {
		usn        string
		course     string
		ia1        int
		ia2        int
		ia3        int
		assignment int
	}{
		{"1MS21CS001", "CS501", 28, 30, 26, 18}, // green
		{"1MS21CS002", "CS501", 18, 20, 16, 8},  // yellow
		{"1MS21CS003", "CS501", 8, 10, 6, 4},    // red
		{"1MS21CS004", "CS502", 25, 27, 29, 15}, // green
		{"1MS21CS005", "CS502", 5, 8, 7, 2},     // red
		{"1MS21CS006", "CS503", 15, 14, 16, 10}, // yellow
	}

	for _, row := range rows {
		var student model.Student
		if err := s.db.Where("usn = ?", row.usn).First(&student).Error; err != nil {
			return err
		}

		var count int64
		if err := s.db.Model(&model.Marks{}).
			Where("student_id = ? AND course_code = ?", student.ID, row.course).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		total, category := scoring.Compute(row.ia1, row.ia2, row.ia3, row.assignment)
		rec := model.Marks{
			StudentID:  student.ID,
			CourseCode: row.course,
			IA1:        row.ia1,
			IA2:        row.ia2,
			IA3:        row.ia3,
			Assignment: row.assignment,
			TotalScore: total,
			Category:   string(category),
		}
		if err := s.db.Create(&rec).Error; err != nil {
			return err
		}
		log.Printf("✅ Recorded marks: %s / %s (%s)", row.usn, row.course, rec.Category)
	}
	return nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}

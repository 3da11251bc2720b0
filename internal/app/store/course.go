package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Course is a row of the courses table.
type Course struct {
	ID          pgtype.UUID
	Title       string
	Description string
	Category    string
	Instructor  string
	CreatedAt   pgtype.Timestamptz
}

// CourseMaterial is a row of the course_materials table.
type CourseMaterial struct {
	ID        pgtype.UUID
	CourseID  pgtype.UUID
	Title     string
	Kind      string
	FileKey   string
	CreatedAt pgtype.Timestamptz
}

const courseColumns = `id, title, description, category, instructor, created_at`

// ListCoursesRow is a course together with its enrollment count.
type ListCoursesRow struct {
	Course
	EnrolledCount int64
}

// ListCourses returns the course catalog with enrollment counts, newest first.
func (s *Store) ListCourses(ctx context.Context) ([]ListCoursesRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.title, c.description, c.category, c.instructor, c.created_at,
		       count(e.user_id) AS enrolled_count
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListCoursesRow
	for rows.Next() {
		var i ListCoursesRow
		if err := rows.Scan(
			&i.ID, &i.Title, &i.Description, &i.Category, &i.Instructor, &i.CreatedAt,
			&i.EnrolledCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// GetCourseByID fetches a course by primary key.
func (s *Store) GetCourseByID(ctx context.Context, id pgtype.UUID) (Course, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Instructor, &c.CreatedAt)
	return c, err
}

// ListCourseMaterials returns the materials attached to a course.
func (s *Store) ListCourseMaterials(ctx context.Context, courseID pgtype.UUID) ([]CourseMaterial, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, course_id, title, kind, file_key, created_at
		FROM course_materials
		WHERE course_id = $1
		ORDER BY created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CourseMaterial
	for rows.Next() {
		var m CourseMaterial
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Kind, &m.FileKey, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// GetCourseMaterial fetches a single material by primary key.
func (s *Store) GetCourseMaterial(ctx context.Context, id pgtype.UUID) (CourseMaterial, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, course_id, title, kind, file_key, created_at
		FROM course_materials WHERE id = $1`, id)
	var m CourseMaterial
	err := row.Scan(&m.ID, &m.CourseID, &m.Title, &m.Kind, &m.FileKey, &m.CreatedAt)
	return m, err
}

type CreateEnrollmentParams struct {
	CourseID pgtype.UUID
	UserID   pgtype.UUID
}

// CreateEnrollment inserts an enrollment row. A duplicate enrollment
// surfaces as a unique violation for the caller to classify.
func (s *Store) CreateEnrollment(ctx context.Context, arg CreateEnrollmentParams) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO enrollments (course_id, user_id) VALUES ($1, $2)`,
		arg.CourseID, arg.UserID)
	return err
}

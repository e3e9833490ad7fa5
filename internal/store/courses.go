package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Course groups lectures together. Owned exclusively by one user.
type Course struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	CreatedAt   int64
	UpdatedAt   int64
}

// Lecture is a single lecture within a course. Transcript and summary are
// produced by the external transcription/summarization collaborator.
type Lecture struct {
	ID         int64
	CourseID   int64
	Title      string
	Transcript string
	Summary    string
	Order      int
	CreatedAt  int64
	UpdatedAt  int64
}

// CreateCourse inserts a new course owned by the given user.
func (db *DB) CreateCourse(userID int64, name, description string) (*Course, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO courses (user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, name, description, now, now)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Course{ID: id, UserID: userID, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}, nil
}

// GetCourse returns a course by ID, or nil if not found.
func (db *DB) GetCourse(id int64) (*Course, error) {
	var c Course
	var desc sql.NullString
	err := db.QueryRow(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM courses WHERE id = ?
	`, id).Scan(&c.ID, &c.UserID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	c.Description = desc.String
	return &c, nil
}

// ListCoursesByUser returns all courses owned by a user, oldest first.
func (db *DB) ListCoursesByUser(userID int64) ([]Course, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM courses WHERE user_id = ? ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		c.Description = desc.String
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// DeleteCourse removes a course; lectures, concepts, quizzes, flashcards and
// progress rows cascade via foreign keys.
func (db *DB) DeleteCourse(id int64) error {
	_, err := db.Exec("DELETE FROM courses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// CreateLecture inserts a new lecture into a course.
func (db *DB) CreateLecture(courseID int64, title, transcript, summary string, order int) (*Lecture, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO lectures (course_id, title, transcript, summary, ord, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, courseID, title, transcript, summary, order, now, now)
	if err != nil {
		return nil, fmt.Errorf("create lecture: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Lecture{
		ID: id, CourseID: courseID, Title: title,
		Transcript: transcript, Summary: summary, Order: order,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// GetLecture returns a lecture by ID, or nil if not found.
func (db *DB) GetLecture(id int64) (*Lecture, error) {
	var l Lecture
	var transcript, summary sql.NullString
	err := db.QueryRow(`
		SELECT id, course_id, title, transcript, summary, ord, created_at, updated_at
		FROM lectures WHERE id = ?
	`, id).Scan(&l.ID, &l.CourseID, &l.Title, &transcript, &summary, &l.Order, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture: %w", err)
	}
	l.Transcript = transcript.String
	l.Summary = summary.String
	return &l, nil
}

// ListLecturesByCourse returns a course's lectures in course order.
func (db *DB) ListLecturesByCourse(courseID int64) ([]Lecture, error) {
	rows, err := db.Query(`
		SELECT id, course_id, title, transcript, summary, ord, created_at, updated_at
		FROM lectures WHERE course_id = ? ORDER BY ord, id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()

	var lectures []Lecture
	for rows.Next() {
		var l Lecture
		var transcript, summary sql.NullString
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &transcript, &summary, &l.Order, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		l.Transcript = transcript.String
		l.Summary = summary.String
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

// CountLecturesByCourse returns the number of lectures in a course.
func (db *DB) CountLecturesByCourse(courseID int64) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM lectures WHERE course_id = ?", courseID).Scan(&count)
	return count, err
}

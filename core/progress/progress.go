package progress

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// Summary counts the published chapters of a course and how many of them a
// user completed.
type Summary struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
}

// Percent returns the floored completion percentage, or nil when the course
// has nothing to complete.
func (s Summary) Percent() *int {
	if s.Total <= 0 {
		return nil
	}

	completed := s.Completed
	if completed > s.Total {
		completed = s.Total
	}
	if completed < 0 {
		completed = 0
	}

	p := completed * 100 / s.Total
	return &p
}

func FetchSummary(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Summary, error) {
	in := struct {
		UserID   string `db:"user_id"`
		CourseID string `db:"course_id"`
	}{userID, courseID}

	q := `
	SELECT
		COUNT(*) AS total,
		COUNT(p.chapter_id) FILTER (WHERE p.completed) AS completed
	FROM chapters ch
	LEFT JOIN chapter_progress p
		ON p.chapter_id = ch.chapter_id AND p.user_id = :user_id
	WHERE ch.course_id = :course_id AND ch.published`

	var s Summary
	if err := database.NamedQueryStruct(ctx, db, q, in, &s); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// Percentage is the completion percentage of userID within courseID.
func Percentage(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (*int, error) {
	s, err := FetchSummary(ctx, db, userID, courseID)
	if err != nil {
		return nil, err
	}
	return s.Percent(), nil
}

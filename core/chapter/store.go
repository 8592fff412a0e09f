package chapter

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

const chapterColumns = `chapter_id, course_id, position, title, description, free, published, url,
	created_at, updated_at, version`

func Create(ctx context.Context, db sqlx.ExtContext, ch Chapter) error {
	q := `
	INSERT INTO chapters
		(chapter_id, course_id, position, title, description, free, published, url, created_at, updated_at)
	VALUES
		(:chapter_id, :course_id, :position, :title, :description, :free, :published, :url, :created_at, :updated_at)`

	return database.NamedExecContext(ctx, db, q, ch)
}

func Update(ctx context.Context, db sqlx.ExtContext, ch Chapter) error {
	q := `
	UPDATE chapters SET
		position = :position,
		title = :title,
		description = :description,
		free = :free,
		published = :published,
		url = :url,
		updated_at = :updated_at,
		version = version + 1
	WHERE chapter_id = :chapter_id AND version = :version`

	return database.NamedExecAffected(ctx, db, q, ch)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Chapter, error) {
	in := struct {
		ID string `db:"chapter_id"`
	}{id}

	q := `SELECT ` + chapterColumns + ` FROM chapters WHERE chapter_id = :chapter_id`

	var ch Chapter
	if err := database.NamedQueryStruct(ctx, db, q, in, &ch); err != nil {
		return Chapter{}, err
	}
	return ch, nil
}

// QueryByCourse returns every chapter of the course, published or not.
func QueryByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Chapter, error) {
	in := struct {
		CourseID string `db:"course_id"`
	}{courseID}

	q := `SELECT ` + chapterColumns + ` FROM chapters WHERE course_id = :course_id ORDER BY position`

	var chs []Chapter
	if err := database.NamedQuerySlice(ctx, db, q, in, &chs); err != nil {
		return nil, err
	}
	return chs, nil
}

func QueryPublishedByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Chapter, error) {
	chs, err := QueryByCourse(ctx, db, courseID)
	if err != nil {
		return nil, err
	}
	return Published(chs), nil
}

func UpdateProgress(ctx context.Context, db sqlx.ExtContext, p Progress) error {
	q := `
	INSERT INTO chapter_progress
		(chapter_id, user_id, completed, created_at, updated_at)
	VALUES
		(:chapter_id, :user_id, :completed, :created_at, :updated_at)
	ON CONFLICT (chapter_id, user_id) DO UPDATE SET
		completed = EXCLUDED.completed,
		updated_at = EXCLUDED.updated_at`

	return database.NamedExecContext(ctx, db, q, p)
}

func QueryProgressByCourse(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) ([]Progress, error) {
	in := struct {
		UserID   string `db:"user_id"`
		CourseID string `db:"course_id"`
	}{userID, courseID}

	q := `
	SELECT p.chapter_id, p.user_id, p.completed, p.created_at, p.updated_at
	FROM chapter_progress p
	JOIN chapters ch ON ch.chapter_id = p.chapter_id
	WHERE p.user_id = :user_id AND ch.course_id = :course_id AND ch.published
	ORDER BY ch.position`

	var ps []Progress
	if err := database.NamedQuerySlice(ctx, db, q, in, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

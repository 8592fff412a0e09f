package course

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

const courseColumns = `c.course_id, c.owner_id, c.category_id, c.title, c.description, c.image_url,
	c.price, c.published, c.created_at, c.updated_at, c.version`

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	q := `
	INSERT INTO courses
		(course_id, owner_id, category_id, title, description, image_url, price, published, created_at, updated_at)
	VALUES
		(:course_id, :owner_id, :category_id, :title, :description, :image_url, :price, :published, :created_at, :updated_at)`

	return database.NamedExecContext(ctx, db, q, c)
}

// Update stores c if nobody changed the row since c.Version was read.
// A stale version is reported as database.ErrDBNotFound.
func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	q := `
	UPDATE courses SET
		category_id = :category_id,
		title = :title,
		description = :description,
		image_url = :image_url,
		price = :price,
		published = :published,
		updated_at = :updated_at,
		version = version + 1
	WHERE course_id = :course_id AND version = :version`

	return database.NamedExecAffected(ctx, db, q, c)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	in := struct {
		ID string `db:"course_id"`
	}{id}

	q := `SELECT ` + courseColumns + ` FROM courses c WHERE c.course_id = :course_id`

	var c Course
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// FetchPublished returns database.ErrDBNotFound for unknown and unpublished
// courses alike.
func FetchPublished(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	in := struct {
		ID string `db:"course_id"`
	}{id}

	q := `SELECT ` + courseColumns + ` FROM courses c WHERE c.course_id = :course_id AND c.published`

	var c Course
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

type Filter struct {
	CategoryID string `db:"category_id"`
}

func QueryPublished(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses c WHERE c.published`
	if f.CategoryID != "" {
		q += ` AND c.category_id = :category_id`
	}
	q += ` ORDER BY c.created_at`

	var cs []Course
	if err := database.NamedQuerySlice(ctx, db, q, f, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func QueryOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	q := `
	SELECT ` + courseColumns + `
	FROM courses c
	JOIN purchases p ON p.course_id = c.course_id
	WHERE p.user_id = :user_id
	ORDER BY p.created_at`

	var cs []Course
	if err := database.NamedQuerySlice(ctx, db, q, in, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

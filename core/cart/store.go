package cart

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// Upsert makes sure the user has a cart and bumps its timestamp.
func Upsert(ctx context.Context, db sqlx.ExtContext, c Cart) error {
	q := `
	INSERT INTO carts
		(user_id, created_at, updated_at)
	VALUES
		(:user_id, :created_at, :updated_at)
	ON CONFLICT (user_id) DO UPDATE SET
		updated_at = EXCLUDED.updated_at,
		version = carts.version + 1`

	return database.NamedExecContext(ctx, db, q, c)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	q := `SELECT user_id, created_at, updated_at, version FROM carts WHERE user_id = :user_id`

	var c Cart
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Cart{}, err
	}

	items, err := FetchItems(ctx, db, userID)
	if err != nil {
		return Cart{}, err
	}
	c.Items = items

	return c, nil
}

// Delete flushes the cart together with its items.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	q := `DELETE FROM carts WHERE user_id = :user_id`

	return database.NamedExecContext(ctx, db, q, in)
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	q := `
	SELECT user_id, course_id, created_at, updated_at
	FROM cart_items
	WHERE user_id = :user_id
	ORDER BY created_at`

	var items []Item
	if err := database.NamedQuerySlice(ctx, db, q, in, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	q := `
	INSERT INTO cart_items
		(user_id, course_id, created_at, updated_at)
	VALUES
		(:user_id, :course_id, :created_at, :updated_at)
	ON CONFLICT (user_id, course_id) DO NOTHING`

	return database.NamedExecContext(ctx, db, q, it)
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) error {
	in := struct {
		UserID   string `db:"user_id"`
		CourseID string `db:"course_id"`
	}{userID, courseID}

	q := `DELETE FROM cart_items WHERE user_id = :user_id AND course_id = :course_id`

	return database.NamedExecAffected(ctx, db, q, in)
}

package purchase

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// Create grants the purchase. Granting an existing purchase again is a no-op.
func Create(ctx context.Context, db sqlx.ExtContext, p Purchase) error {
	q := `
	INSERT INTO purchases
		(user_id, course_id, created_at)
	VALUES
		(:user_id, :course_id, :created_at)
	ON CONFLICT (user_id, course_id) DO NOTHING`

	return database.NamedExecContext(ctx, db, q, p)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Purchase, error) {
	in := struct {
		UserID   string `db:"user_id"`
		CourseID string `db:"course_id"`
	}{userID, courseID}

	q := `
	SELECT user_id, course_id, created_at
	FROM purchases
	WHERE user_id = :user_id AND course_id = :course_id`

	var p Purchase
	if err := database.NamedQueryStruct(ctx, db, q, in, &p); err != nil {
		return Purchase{}, err
	}
	return p, nil
}

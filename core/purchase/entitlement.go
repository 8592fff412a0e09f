package purchase

import (
	"context"
	"errors"

	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/course"
	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// Entitled reports whether the caller may consume the content of c. Admins
// and the course owner always may; everybody else needs a purchase.
// This is the enforcement point for content endpoints.
func Entitled(ctx context.Context, db sqlx.ExtContext, clm claims.Claims, c course.Course) (bool, error) {
	if clm.Role == claims.RoleAdmin || clm.UserID == c.OwnerID {
		return true, nil
	}

	if _, err := Fetch(ctx, db, clm.UserID, c.ID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

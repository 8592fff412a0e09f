package purchase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/course"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
)

// HandleGrant gives a user access to a course without going through checkout.
func HandleGrant(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		var in PurchaseNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		p := Purchase{
			UserID:    in.UserID,
			CourseID:  courseID,
			CreatedAt: time.Now().UTC(),
		}

		if err := Create(ctx, db, p); err != nil {
			return fmt.Errorf("granting course[%s] to user[%s]: %w", courseID, in.UserID, err)
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

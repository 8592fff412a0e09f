package progress

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/course"
	"github.com/irsalhamdi/lms/core/purchase"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
)

type Response struct {
	CourseID string `json:"courseId"`
	Progress *int   `json:"progress"`
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		c, err := course.FetchPublished(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		ok, err := purchase.Entitled(ctx, db, clm, c)
		if err != nil {
			return fmt.Errorf("checking entitlement of user[%s] to course[%s]: %w", clm.UserID, courseID, err)
		}
		if !ok {
			return weberr.Forbidden(fmt.Errorf("user[%s] has not purchased course[%s]", clm.UserID, courseID))
		}

		p, err := Percentage(ctx, db, clm.UserID, courseID)
		if err != nil {
			return fmt.Errorf("computing progress of user[%s] on course[%s]: %w", clm.UserID, courseID, err)
		}

		return web.Respond(ctx, w, Response{CourseID: courseID, Progress: p}, http.StatusOK)
	}
}

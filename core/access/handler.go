package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/validate"
)

type View struct {
	Result
	Decision Decision `json:"decision"`
	Target   string   `json:"target"`
}

// HandleEnter redirects the learner to the player serving the course, or
// home when the course cannot be entered.
func HandleEnter(rs *Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return web.Redirect(ctx, w, r, deny.Path())
		}

		d := rs.Decide(ctx, claims.UserID(ctx), courseID)

		return web.Redirect(ctx, w, r, d.Path())
	}
}

func HandleShow(rs *Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		res, ok := rs.Resolve(ctx, clm.UserID, courseID)
		if !ok {
			return weberr.NotFound(fmt.Errorf("course[%s] unavailable", courseID))
		}

		d := Route(res)
		v := View{
			Result:   res,
			Decision: d,
			Target:   d.Path(),
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

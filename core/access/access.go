// Package access decides whether a user can enter a course and which player
// serves it. Every lookup failure degrades to "no access": callers never see
// an error, only a Decision.
package access

import (
	"context"
	"net/url"

	"github.com/irsalhamdi/lms/core/category"
	"github.com/irsalhamdi/lms/core/chapter"
	"github.com/irsalhamdi/lms/core/course"
	"github.com/irsalhamdi/lms/core/scorm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Course is a published course with everything needed to route a learner.
type Course struct {
	course.Course
	Category *category.Category `json:"category,omitempty"`
	Chapters []chapter.Chapter  `json:"chapters"`
	Scorm    *scorm.Package     `json:"scorm,omitempty"`
}

type Result struct {
	Course      Course `json:"course"`
	Progress    *int   `json:"progress"`
	IsPurchased bool   `json:"isPurchased"`
}

// Entitlements reports whether a purchase exists for the pair. Absence may be
// signalled either as (false, nil) or as database.ErrDBNotFound.
type Entitlements interface {
	Purchased(ctx context.Context, userID string, courseID string) (bool, error)
}

// Courses loads a course aggregate, failing with database.ErrDBNotFound when
// the course is unknown or unpublished.
type Courses interface {
	Published(ctx context.Context, courseID string) (Course, error)
}

type Progresses interface {
	Percentage(ctx context.Context, userID string, courseID string) (*int, error)
}

type Kind int

const (
	Denied Kind = iota
	Scorm
	Chapter
)

func (k Kind) String() string {
	switch k {
	case Scorm:
		return "scorm"
	case Chapter:
		return "chapter"
	default:
		return "denied"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Decision struct {
	Kind      Kind   `json:"kind"`
	CourseID  string `json:"courseId,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
}

// Path is where the presentation layer redirects the learner.
func (d Decision) Path() string {
	switch d.Kind {
	case Scorm:
		return "/courses/" + url.PathEscape(d.CourseID) + "/scorm"
	case Chapter:
		return "/courses/" + url.PathEscape(d.CourseID) + "/chapters/" + url.PathEscape(d.ChapterID)
	default:
		return "/"
	}
}

var deny = Decision{Kind: Denied}

// Route picks the delivery mode for a resolved course. A SCORM package wins
// over chapters and is routed whether or not the course was purchased.
// Chapters are re-filtered here so an unpublished chapter never becomes the
// entry point.
func Route(res Result) Decision {
	chs := chapter.Published(res.Course.Chapters)

	switch {
	case len(chs) == 0 && res.Course.Scorm == nil:
		return deny
	case res.Course.Scorm != nil:
		return Decision{Kind: Scorm, CourseID: res.Course.ID}
	case len(chs) > 0:
		return Decision{Kind: Chapter, CourseID: res.Course.ID, ChapterID: chs[0].ID}
	default:
		return deny
	}
}

type Resolver struct {
	log          logrus.FieldLogger
	entitlements Entitlements
	courses      Courses
	progress     Progresses
}

func NewResolver(log logrus.FieldLogger, e Entitlements, c Courses, p Progresses) *Resolver {
	return &Resolver{
		log:          log,
		entitlements: e,
		courses:      c,
		progress:     p,
	}
}

// Resolve loads what userID can see of courseID. The boolean is false when
// the course is unavailable for any reason, including lookup failures.
func (r *Resolver) Resolve(ctx context.Context, userID string, courseID string) (Result, bool) {
	if userID == "" {
		return Result{}, false
	}

	log := r.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"course_id": courseID,
	})

	var (
		owned  lookup[bool]
		loaded lookup[Course]
		g      errgroup.Group
	)

	// The closures never fail: every outcome is carried by the lookups.
	g.Go(func() error {
		owned = attempt(func() (bool, error) {
			return r.entitlements.Purchased(ctx, userID, courseID)
		})
		return nil
	})
	g.Go(func() error {
		loaded = attempt(func() (Course, error) {
			return r.courses.Published(ctx, courseID)
		})
		return nil
	})
	_ = g.Wait()

	if owned.failed() {
		log.WithError(owned.err).Warn("entitlement lookup failed, assuming not purchased")
	}

	c, ok := loaded.get()
	if !ok {
		if loaded.failed() {
			log.WithError(loaded.err).Warn("course lookup failed, denying access")
		}
		return Result{}, false
	}

	purchased, _ := owned.get()
	res := Result{
		Course:      c,
		IsPurchased: purchased,
	}

	if !purchased {
		return res, true
	}

	p := attempt(func() (*int, error) {
		return r.progress.Percentage(ctx, userID, courseID)
	})
	if p.failed() {
		log.WithError(p.err).Warn("progress computation failed")
	}
	res.Progress, _ = p.get()

	return res, true
}

// Decide resolves and routes in one pass. An anonymous caller is denied
// before any lookup happens.
func (r *Resolver) Decide(ctx context.Context, userID string, courseID string) Decision {
	if userID == "" {
		return deny
	}

	res, ok := r.Resolve(ctx, userID, courseID)
	if !ok {
		return deny
	}

	return Route(res)
}

package test

import (
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/lms/core/chapter"
	"github.com/irsalhamdi/lms/core/course"
)

type courseTest struct {
	*TestEnv
}

var courseSeq int

// createCourseOK creates a published course as the admin.
func (ct *courseTest) createCourseOK(t *testing.T) course.Course {
	t.Helper()

	if err := Login(ct.Server, ct.AdminEmail, ct.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.Server)

	courseSeq++
	in := course.CourseNew{
		Title:       fmt.Sprintf("Course %d", courseSeq),
		Description: "A course",
		Price:       10 * courseSeq,
		ImageURL:    "https://example.com/course.png",
	}

	var c course.Course
	Expect(t, ct.Server, http.MethodPost, "/courses", in, http.StatusCreated, &c)

	published := true
	Expect(t, ct.Server, http.MethodPut, "/courses/"+c.ID, course.CourseUp{Published: &published}, http.StatusOK, &c)

	if !c.Published {
		t.Fatalf("course[%s] not published", c.ID)
	}
	return c
}

func (ct *courseTest) createChapterOK(t *testing.T, in chapter.ChapterNew) chapter.Chapter {
	t.Helper()

	if err := Login(ct.Server, ct.AdminEmail, ct.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.Server)

	var ch chapter.Chapter
	Expect(t, ct.Server, http.MethodPost, "/chapters", in, http.StatusCreated, &ch)
	return ch
}

func (ct *courseTest) listCoursesOwnedOK(t *testing.T, expected []course.Course) {
	t.Helper()

	if err := Login(ct.Server, ct.UserEmail, ct.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.Server)

	var got []course.Course
	Expect(t, ct.Server, http.MethodGet, "/courses/owned", nil, http.StatusOK, &got)

	if diff := cmp.Diff(courseIDs(expected), courseIDs(got)); diff != "" {
		t.Fatalf("owned courses mismatch (-want +got):\n%s", diff)
	}
}

func courseIDs(cs []course.Course) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestCourse(t *testing.T) {
	env, err := NewTestEnv(t, "course_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{env}
	c := ct.createCourseOK(t)

	t.Run("anonymous sees published course", func(t *testing.T) {
		var got course.Course
		Expect(t, ct.Server, http.MethodGet, "/courses/"+c.ID, nil, http.StatusOK, &got)
		if got.ID != c.ID {
			t.Fatalf("expected course %s, got %s", c.ID, got.ID)
		}
	})

	t.Run("user cannot create courses", func(t *testing.T) {
		if err := Login(ct.Server, ct.UserEmail, ct.UserPass); err != nil {
			t.Fatal(err)
		}
		defer Logout(ct.Server)

		in := course.CourseNew{Title: "x", Description: "x", ImageURL: "x"}
		Expect(t, ct.Server, http.MethodPost, "/courses", in, http.StatusForbidden, nil)
	})

	t.Run("unpublished course is hidden", func(t *testing.T) {
		if err := Login(ct.Server, ct.AdminEmail, ct.AdminPass); err != nil {
			t.Fatal(err)
		}
		unpublished := false
		Expect(t, ct.Server, http.MethodPut, "/courses/"+c.ID, course.CourseUp{Published: &unpublished}, http.StatusOK, nil)
		if err := Logout(ct.Server); err != nil {
			t.Fatal(err)
		}

		Expect(t, ct.Server, http.MethodGet, "/courses/"+c.ID, nil, http.StatusNotFound, nil)
	})
}

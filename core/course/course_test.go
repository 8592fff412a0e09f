package course

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApply(t *testing.T) {
	cat := "0b9e5b0c-6a3b-4d3e-9c55-3b7c8b0d2a11"
	title := "Concurrency in Go"
	price := 25
	published := true

	c := Course{
		ID:          "c1",
		Title:       "Go",
		Description: "intro",
		Price:       10,
	}

	c.Apply(CourseUp{
		Title:      &title,
		CategoryID: &cat,
		Price:      &price,
		Published:  &published,
	})

	exp := Course{
		ID:          "c1",
		Title:       title,
		Description: "intro",
		CategoryID:  &cat,
		Price:       price,
		Published:   true,
	}

	if diff := cmp.Diff(exp, c); diff != "" {
		t.Fatalf("course mismatch (-want +got):\n%s", diff)
	}
}

package cart

import "testing"

func TestHas(t *testing.T) {
	c := Cart{Items: []Item{{CourseID: "c1"}, {CourseID: "c2"}}}

	if !c.Has("c2") {
		t.Fatal("expected c2 in cart")
	}
	if c.Has("c3") {
		t.Fatal("c3 is not in the cart")
	}
	if (Cart{}).Has("c1") {
		t.Fatal("empty cart has nothing")
	}
}

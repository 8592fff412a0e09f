package test

import (
	"net/http"
	"testing"

	"github.com/irsalhamdi/lms/core/cart"
)

type cartTest struct {
	*TestEnv
}

func (rt *cartTest) createItemOK(t *testing.T, courseID string) {
	t.Helper()

	if err := Login(rt.Server, rt.UserEmail, rt.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(rt.Server)

	var c cart.Cart
	Expect(t, rt.Server, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: courseID}, http.StatusOK, &c)

	for _, it := range c.Items {
		if it.CourseID == courseID {
			return
		}
	}
	t.Fatalf("course[%s] missing from cart", courseID)
}

func TestCart(t *testing.T) {
	env, err := NewTestEnv(t, "cart_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{env}
	rt := &cartTest{env}

	c1 := ct.createCourseOK(t)
	c2 := ct.createCourseOK(t)

	rt.createItemOK(t, c1.ID)
	rt.createItemOK(t, c2.ID)

	if err := Login(env.Server, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env.Server)

	Expect(t, env.Server, http.MethodDelete, "/cart/items/"+c1.ID, nil, http.StatusNoContent, nil)

	var c cart.Cart
	Expect(t, env.Server, http.MethodGet, "/cart", nil, http.StatusOK, &c)
	if len(c.Items) != 1 || c.Items[0].CourseID != c2.ID {
		t.Fatalf("unexpected cart items %+v", c.Items)
	}

	Expect(t, env.Server, http.MethodDelete, "/cart", nil, http.StatusNoContent, nil)
}

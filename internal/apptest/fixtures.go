package apptest

import (
	"fmt"

	"github.com/roach88/seqharness/internal/app"
	"github.com/roach88/seqharness/internal/session"
)

// Projects returns n projects with IDs starting at 1.
func Projects(n int) []app.Project {
	out := make([]app.Project, n)
	for i := range out {
		out[i] = app.Project{
			ID:    int64(i + 1),
			Name:  fmt.Sprintf("Project %d", i+1),
			Forms: i % 3,
		}
	}
	return out
}

// Administrators returns n users with administrator addresses.
func Administrators(n int) []session.User {
	return users(n, "admin")
}

// Users returns n users. The first is always testutil.MockUser.
func Users(n int) []session.User {
	return users(n, "user")
}

func users(n int, prefix string) []session.User {
	out := make([]session.User, n)
	for i := range out {
		email := fmt.Sprintf("%s%d@test.com", prefix, i+1)
		if prefix == "user" && i == 0 {
			email = "user@test.com"
		}
		out[i] = session.User{ID: int64(i + 1), Email: email}
	}
	return out
}

// Fixture returns the named fixture collection with n entries.
func Fixture(name string, n int) (any, error) {
	switch name {
	case "projects":
		return Projects(n), nil
	case "administrators":
		return Administrators(n), nil
	case "users":
		return Users(n), nil
	default:
		return nil, fmt.Errorf("unknown fixture %q", name)
	}
}

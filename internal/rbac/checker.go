package rbac

import (
	"strings"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	perms, ok := c.RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == "*" || matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// ---- resource-scoped predicates ----

// IsOwner reports whether p is the course's teacher-of-record. Admins
// pass every ownership check.
func IsOwner(c *course.Course, p auth.Principal) bool {
	return c.Teacher == p.ID || p.Role == user.RoleAdmin
}

// IsEnrolled reports whether p may act as a course participant:
// an enrolled student, the owner, or an admin.
func IsEnrolled(c *course.Course, p auth.Principal) bool {
	return c.IsEnrolled(p.ID) || IsOwner(c, p)
}

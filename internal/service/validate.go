package service

import (
	"regexp"
	"strings"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
	// bcrypt hashes only the first 72 bytes, so longer passwords are
	// rejected here rather than silently truncated.
	maxPasswordBytes = 72
	minNameLen       = 2
	maxNameLen       = 100
)

// validateRegistration checks all registration fields at once and returns a
// single error carrying every field failure, so the client can annotate the
// whole form in one round trip.
func validateRegistration(name, email, password string) error {
	errs := map[string]string{}

	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		errs["email"] = "Invalid email format"
	}

	if password == "" {
		errs["password"] = "Password is required"
	} else if msg := passwordIssue(password); msg != "" {
		errs["password"] = msg
	}

	if name == "" {
		errs["name"] = "Name is required"
	} else if msg := nameIssue(name); msg != "" {
		errs["name"] = msg
	}

	if len(errs) > 0 {
		return apperror.ValidationFields(errs)
	}
	return nil
}

func passwordIssue(password string) string {
	if len(password) < minPasswordLen {
		return "Password must be at least 6 characters long"
	}
	if len(password) > maxPasswordLen {
		return "Password must be less than 128 characters"
	}
	if len(password) > maxPasswordBytes {
		return "Password must be 72 characters or fewer"
	}
	return ""
}

func nameIssue(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minNameLen {
		return "Name must be at least 2 characters long"
	}
	if len(name) > maxNameLen {
		return "Name must be less than 100 characters"
	}
	if !namePattern.MatchString(trimmed) {
		return "Name contains invalid characters"
	}
	return ""
}

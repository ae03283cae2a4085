package cart

import "strings"

// isAlreadyExistsText recognizes backends that report a duplicate cart line
// as free text in a transport error instead of a structured conflict.
// Only consulted after errors.Is(err, domain.ErrConflict) has failed.
func isAlreadyExistsText(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

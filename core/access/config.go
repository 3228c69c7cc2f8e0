package access

import "tinyflow/core/utils"

// Config holds the privileged identities and the CI credential.
type Config struct {
	// Superusers lists the identifiers granted elevated privileges.
	Superusers []string `mapstructure:"superusers" default:"pi57,ka429"`
	// Token is the bearer credential for the CI integration. It has no
	// default and must come from the environment.
	Token string `mapstructure:"token" default:""`
}

// Set is an immutable membership set of superuser identifiers.
type Set struct {
	ids   []string
	index map[string]struct{}
}

// NewSet builds a Set from ids. Identifiers are trimmed, empty ones are
// dropped and duplicates keep their first position.
func NewSet(ids []string) Set {
	norm := utils.Normalize(ids)
	index := make(map[string]struct{}, len(norm))
	for _, id := range norm {
		index[id] = struct{}{}
	}
	return Set{ids: norm, index: index}
}

// Contains reports whether id is a superuser.
func (s Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns a copy of the identifiers in configured order.
func (s Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of superusers.
func (s Set) Len() int {
	return len(s.ids)
}

// Redact masks a secret for display, keeping only its last four characters.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

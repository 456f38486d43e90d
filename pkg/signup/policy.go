package signup

import (
	"strings"

	"github.com/shopcore/shop-auth/pkg/role"
)

// Classify maps a signup email to a role name. The comparison against the
// configured administrator email is case-insensitive and exact: no domain
// wildcards, no list support. An empty adminEmail never matches, so every
// signup is classified as the default role.
func Classify(email, adminEmail string) string {
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		return role.DefaultRoleName
	}
	if strings.EqualFold(strings.TrimSpace(email), adminEmail) {
		return role.AdminRoleName
	}
	return role.DefaultRoleName
}

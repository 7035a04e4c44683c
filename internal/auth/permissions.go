package auth

import "strings"

// apiRoleMap holds the roles allowed to reach each staff API prefix. Keys may
// carry a method ("GET /dining-tables") to widen read access on admin-managed
// resources. Longest matching path wins, method-specific over generic.
var apiRoleMap = map[string][]UserRole{
	"/orders":      {RoleAdmin, RoleEmployee},
	"/order-items": {RoleAdmin, RoleEmployee},

	"GET /dining-tables": {RoleAdmin, RoleEmployee},
	"/dining-tables":     {RoleAdmin},

	"GET /categories": {RoleAdmin, RoleEmployee},
	"/categories":     {RoleAdmin},

	"GET /food-items": {RoleAdmin, RoleEmployee},
	"/food-items":     {RoleAdmin},

	"/employees":    {RoleAdmin},
	"/reservations": {RoleAdmin},
}

// RequiredRolesForAPI resolves the role set allowed to call the given staff
// route. Unknown paths fall back to admin so an unmapped route is never wider
// than intended.
func RequiredRolesForAPI(path string, method string) []UserRole {
	method = strings.ToUpper(strings.TrimSpace(method))

	var bestPath string
	var bestRoles []UserRole
	var bestMethodSpecific bool

	for key, roles := range apiRoleMap {
		keyPath := key
		methodSpecific := false
		if strings.Contains(key, " ") {
			parts := strings.SplitN(key, " ", 2)
			keyMethod := strings.ToUpper(strings.TrimSpace(parts[0]))
			keyPath = strings.TrimSpace(parts[1])
			methodSpecific = true
			if method == "" || method != keyMethod {
				continue
			}
		}

		if !strings.HasPrefix(path, keyPath) {
			continue
		}

		if bestRoles == nil || len(keyPath) > len(bestPath) || (len(keyPath) == len(bestPath) && methodSpecific && !bestMethodSpecific) {
			bestPath = keyPath
			bestMethodSpecific = methodSpecific
			bestRoles = roles
		}
	}

	if bestRoles == nil {
		return []UserRole{RoleAdmin}
	}
	return bestRoles
}

func RoleAllowed(role UserRole, allowed []UserRole) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

package middleware

// RoutePolicy is the declarative access requirement a route registers with.
// The guard consults the descriptor at request time; routes never carry
// their policy implicitly. An empty Roles slice means any authenticated
// role is acceptable.
type RoutePolicy struct {
	AuthRequired bool
	Roles        []string
}

// Public returns the policy for routes that skip authentication entirely.
func Public() RoutePolicy {
	return RoutePolicy{}
}

// Authenticated returns a policy requiring a valid access token and, when
// roles are given, membership in that set.
func Authenticated(roles ...string) RoutePolicy {
	return RoutePolicy{AuthRequired: true, Roles: roles}
}

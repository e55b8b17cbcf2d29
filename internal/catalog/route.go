package catalog

import "github.com/five82/brokerdesk/internal/session"

// LoginRoute is the public-only sign-in view.
const LoginRoute = "login"

// Home returns the landing screen ID for role.
func Home(role session.Role) string {
	if screens := ForRole(role); len(screens) > 0 {
		return screens[0].ID
	}
	return LoginRoute
}

// Route resolves a navigation request. Without a valid session everything
// lands on login; with one, login and screens the role may not open land on
// the role's home screen.
func Route(s session.Session, requested string) string {
	if !s.Valid() {
		return LoginRoute
	}
	if requested == LoginRoute {
		return Home(s.Role)
	}
	screen, ok := Lookup(requested)
	if !ok || !screen.Allows(s.Role) {
		return Home(s.Role)
	}
	return screen.ID
}

package backend

// Access tells whether a route requires a logged-in redactor.
type Access int

const (
	Login Access = iota
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "login"
}

// Policy maps route names to their access requirement. Routes which are not listed require login.
type Policy map[string]Access

// NewPolicy returns the access policy of all routes.
//
// The redactor list and detail pages have been public so far, unlike all other content.
// Whether that is intended is not confirmed yet, so it is configurable.
func NewPolicy(publicRedactors bool) Policy {

	var redactorPages = Login
	if publicRedactors {
		redactorPages = Public
	}

	return Policy{
		"index":  Login,
		"login":  Public,
		"logout": Login,

		"topic-list":   Login,
		"topic-create": Login,
		"topic-detail": Login,
		"topic-update": Login,
		"topic-delete": Login,

		"newspaper-list":          Login,
		"newspaper-create":        Login,
		"newspaper-detail":        Login,
		"newspaper-update":        Login,
		"newspaper-delete":        Login,
		"newspaper-toggle-assign": Login,

		"redactor-list":   redactorPages,
		"redactor-detail": redactorPages,
		"redactor-create": Login,
		"redactor-update": Login,
		"redactor-delete": Login,
	}
}

// Access returns the access requirement of a route. Unknown routes require login.
func (p Policy) Access(route string) Access {
	if a, ok := p[route]; ok {
		return a
	}
	return Login
}

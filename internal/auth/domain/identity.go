package domain

// Identity is the authenticated principal. Identifier is the email address the
// account logs in with and the "sub" of every token issued for it.
type Identity struct {
	Identifier string
}

// Profile is what a protected endpoint returns about the caller.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
}

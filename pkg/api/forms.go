package api

// CredentialsForm is the login and registration form body.
type CredentialsForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
}

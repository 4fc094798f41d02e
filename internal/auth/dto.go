package auth

// Request fields are pointers so that a missing property is told apart
// from an empty string.
type registerRequest struct {
	Name     *string `json:"name" validate:"required"`
	Email    *string `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required,password_policy"`
}

func (r registerRequest) input() RegisterInput {
	return RegisterInput{Name: deref(r.Name), Email: deref(r.Email), Password: deref(r.Password)}
}

type loginRequest struct {
	Email    *string `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required"`
}

func (r loginRequest) input() LoginInput {
	return LoginInput{Email: deref(r.Email), Password: deref(r.Password)}
}

type registerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type currentUserResponse struct {
	ID string `json:"id"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

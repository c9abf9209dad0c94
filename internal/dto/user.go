package dto

// CredentialsRequest is the body accepted by login and user creation.
// Fields are pointers so an absent key can be told apart from an empty value.
type CredentialsRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// MissingKeys lists the JSON keys absent from the request, in declaration order.
func (r CredentialsRequest) MissingKeys() []string {
	var missing []string
	if r.Email == nil {
		missing = append(missing, "email")
	}
	if r.Password == nil {
		missing = append(missing, "password")
	}
	return missing
}

// LoginRequest is the body of POST /api/user/login.
type LoginRequest = CredentialsRequest

// CreateUserRequest is the body of POST /api/user/create.
type CreateUserRequest = CredentialsRequest

// CreateUserResponse is returned when a user is created.
type CreateUserResponse struct {
	Message string `json:"message"`
}

package server

import (
	"net/http"

	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
)

// SignUpPageHandler renders the registration page (GET /signup)
func (s *Server) SignUpPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")

	return func(w http.ResponseWriter, r *http.Request) {
		renderTemplate(w, tmpl, http.StatusOK, s.pageData(r))
	}
}

// SignUpSubmissionHandler handles the registration form (POST /signup). A new account still
// has to sign in.
func (s *Server) SignUpSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")

	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := auth.RegistrationForm{
			FullName:    r.FormValue("full_name"),
			PhoneNumber: r.FormValue("phone_number"),
			Address:     r.FormValue("address"),
			Email:       r.FormValue("email"),
			Password:    r.FormValue("password"),
			AcceptTerms: r.FormValue("terms") != "",
		}

		if _, err := session.Workspace.Auth.Register(r.Context(), form); err != nil {
			var validationErr *auth.ValidationError
			if errors.As(err, &validationErr) {
				data := s.pageData(r)
				data.Fields = validationErr.Fields
				data.Form = map[string]string{
					"full_name":    form.FullName,
					"phone_number": form.PhoneNumber,
					"address":      form.Address,
					"email":        form.Email,
				}
				renderTemplate(w, tmpl, http.StatusUnprocessableEntity, data)
				return
			}
			redirectWithError(w, r, RouteSignUp, messageOr(err, "Registration failed"))
			return
		}

		redirectWithNotice(w, r, auth.SignInPath, "Account created successfully!")
	}
}

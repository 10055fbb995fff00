// server/internal/auth/errors.go
package auth

import "fmt"

// Provider-style error codes returned by sign-in and provisioning.
const (
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeNetworkFailed     = "auth/network-request-failed"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeProfileNotFound   = "auth/profile-not-found"
)

// Error carries an authentication failure code.
type Error struct {
	Code string
}

func (e *Error) Error() string { return e.Code }

// Message is the user facing text for the error.
func (e *Error) Message() string { return Message(e.Code) }

func NewError(code string) *Error { return &Error{Code: code} }

var messages = map[string]string{
	CodeInvalidEmail:      "Format email invalide.",
	CodeUserNotFound:      "Identifiants incorrects.",
	CodeWrongPassword:     "Identifiants incorrects.",
	CodeInvalidCredential: "Identifiants incorrects.",
	CodeTooManyRequests:   "Compte temporairement bloqué. Réessayez plus tard.",
	CodeNetworkFailed:     "Vérifiez votre connexion internet.",
	CodeEmailInUse:        "Cet email est déjà utilisé.",
	CodeWeakPassword:      "Le mot de passe doit contenir au moins 6 caractères.",
	CodeProfileNotFound:   "Profil utilisateur introuvable.",
}

// Message maps an error code to its French message.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Erreur (%s)", code)
}

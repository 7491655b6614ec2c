package clconsents

import (
	"errors"
	"fmt"
	"strings"
)

// Erreurs sentinelles remontées jusqu'à la frontière HTTP
var (
	// ErrProjectNotFound : projet absent ou inactif
	ErrProjectNotFound = errors.New("projet introuvable ou inactif")

	// ErrForbidden : le projet n'appartient pas à l'appelant
	ErrForbidden = errors.New("accès refusé à ce projet")
)

// ValidationError liste les champs requis absents de la requête
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("champs requis manquants: %s", strings.Join(e.Missing, ", "))
}

// IsValidation indique si l'erreur est une erreur de validation
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package commands

import (
	"errors"
	"fmt"

	"banbds/internal/domain"
)

// loginHint points the user at login when a user session is missing or
// was rejected.
func loginHint(err error) error {
	if errors.Is(err, domain.ErrNoUserSession) || errors.Is(err, domain.ErrUnauthorizedUser) {
		return fmt.Errorf("%w; run `banbds login <phone>`", err)
	}
	return err
}

package auth

import (
	"errors"
	"testing"

	"github.com/schoolthings/apphub/internal/models"
)

func TestRequireOwner(t *testing.T) {
	resolver := &Resolver{}

	t.Run("owner passes", func(t *testing.T) {
		user := &models.User{ID: 7}
		if err := resolver.RequireOwner(user, 7); err != nil {
			t.Errorf("unexpected error for owner: %v", err)
		}
	})

	t.Run("non-owner gets ErrNotOwner", func(t *testing.T) {
		user := &models.User{ID: 7}
		err := resolver.RequireOwner(user, 8)
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("got %v, want ErrNotOwner", err)
		}
	})
}

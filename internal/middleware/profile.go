package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
)

const (
	ProfileHeader = "profile_id"
	profileLocal  = "profile"
)

type ProfileFinder interface {
	GetProfile(ctx context.Context, id uint) (*models.Profile, error)
}

// ResolveProfile loads the caller named by the profile_id header. Anything
// that does not resolve to an existing profile is a 401.
func ResolveProfile(finder ProfileFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := LookupProfile(c.UserContext(), finder, c.Get(ProfileHeader))
		if err != nil {
			return err
		}
		c.Locals(profileLocal, p)
		return c.Next()
	}
}

// LookupProfile resolves a raw profile id the same way ResolveProfile does.
func LookupProfile(ctx context.Context, finder ProfileFinder, raw string) (*models.Profile, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fiber.ErrUnauthorized
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, fiber.ErrUnauthorized
	}

	p, err := finder.GetProfile(ctx, uint(id))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fiber.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CurrentProfile returns the profile attached by ResolveProfile, or nil.
func CurrentProfile(c *fiber.Ctx) *models.Profile {
	p, _ := c.Locals(profileLocal).(*models.Profile)
	return p
}

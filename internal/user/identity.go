package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Identity is who a request acts as. The zero value is a guest.
type Identity struct {
	UserID string
	Token  string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// IdentityFromCtx reads the token the JWT middleware stored under "user". A request
// without one is a guest, which is not an error; a token without a usable subject is.
func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	u := c.Locals("user")
	if u == nil {
		return Identity{}, nil
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}
	id, err := subject(claims)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: id, Token: tok.Raw}, nil
}

func subject(claims jwt.MapClaims) (string, error) {
	raw, ok := claims["user_id"]
	if !ok {
		raw, ok = claims["sub"]
	}
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	switch v := raw.(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case string:
		if v == "" {
			return "", fiber.ErrUnauthorized
		}
		return v, nil
	default:
		return "", fiber.ErrUnauthorized
	}
}

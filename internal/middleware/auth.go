package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
)

type ctxKey string

const authUserKey ctxKey = "authUser"

// AuthUser is the verified identity attached to the request context.
// The UID doubles as trainerId / playerId depending on who is calling.
type AuthUser struct {
	UID    string
	Email  string
	Claims map[string]any
}

func WithAuth(authClient *auth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := authClient.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			au := &AuthUser{
				UID:    tok.UID,
				Claims: tok.Claims,
			}
			if v, ok := tok.Claims["email"].(string); ok {
				au.Email = v
			}

			ctx := context.WithValue(r.Context(), authUserKey, au)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	v := ctx.Value(authUserKey)
	if v == nil {
		return nil, false
	}
	au, ok := v.(*AuthUser)
	return au, ok
}

// IsFacilityOwner reports whether the caller's claims mark them as a
// facility owner or trainer account.
func IsFacilityOwner(claims map[string]any) bool {
	if claims == nil {
		return false
	}

	ownerRoles := []string{"owner", "facility_owner", "trainer"}

	if role, ok := claims["role"].(string); ok {
		for _, r := range ownerRoles {
			if role == r {
				return true
			}
		}
	}
	if accountType, ok := claims["accountType"].(string); ok {
		for _, r := range ownerRoles {
			if accountType == r {
				return true
			}
		}
	}
	if owner, ok := claims["owner"].(bool); ok && owner {
		return true
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, role := range roles {
			if str, ok := role.(string); ok {
				for _, r := range ownerRoles {
					if str == r {
						return true
					}
				}
			}
		}
	}

	return false
}

package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"courtly/backend/internal/config"
	"courtly/backend/internal/domain/booking"
	"courtly/backend/internal/domain/fees"
	"courtly/backend/internal/domain/payments"
	"courtly/backend/internal/domain/relationship"
	"courtly/backend/internal/middleware"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Cfg             config.Config
	AuthClient      *auth.Client
	BookingSvc      *booking.Service
	RelationshipSvc *relationship.Service
	FeesSvc         *fees.Service
	PaymentsSvc     *payments.Service
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Stripe Webhook (no auth required) =====
	if d.PaymentsSvc != nil {
		r.Post("/v1/stripe/webhook", d.PaymentsSvc.HandleWebhook)
	}

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			WriteJSON(w, 200, map[string]any{
				"uid":    au.UID,
				"email":  au.Email,
				"claims": au.Claims,
			})
		})

		// ===== Bookings =====
		pr.Post("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in booking.CreateInput
			if err := ReadJSON(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if in.PlayerEmail == "" {
				in.PlayerEmail = au.Email
			}

			out, err := d.BookingSvc.Create(r.Context(), au.UID, in)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			bookingID := chi.URLParam(r, "bookingId")

			out, err := d.BookingSvc.Get(r.Context(), au.UID, bookingID)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Post("/v1/bookings/{bookingId}/confirm", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if !middleware.IsFacilityOwner(au.Claims) {
				Fail(w, 403, "facility owner access required")
				return
			}
			bookingID := chi.URLParam(r, "bookingId")

			out, err := d.BookingSvc.Confirm(r.Context(), au.UID, bookingID)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Post("/v1/bookings/{bookingId}/decline", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if !middleware.IsFacilityOwner(au.Claims) {
				Fail(w, 403, "facility owner access required")
				return
			}
			bookingID := chi.URLParam(r, "bookingId")

			var in struct {
				Reason string `json:"reason"`
			}
			if err := ReadJSON(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.BookingSvc.Decline(r.Context(), au.UID, bookingID, in.Reason)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		// ===== Fees =====
		pr.Get("/v1/fees/quote", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			trainerID := strings.TrimSpace(r.URL.Query().Get("trainerId"))
			priceCents, _ := strconv.ParseInt(r.URL.Query().Get("priceCents"), 10, 64)
			if trainerID == "" {
				Fail(w, 400, "trainerId is required")
				return
			}

			out, err := d.FeesSvc.QuoteFees(r.Context(), trainerID, au.UID, priceCents)
			if err != nil {
				status, msg := mapFeesError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Get("/v1/fees/tier", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			trainerID := strings.TrimSpace(r.URL.Query().Get("trainerId"))
			clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))

			// A trainer asks about their client; a player asks about a
			// trainer. Either way the caller is one side of the pair.
			if trainerID == "" {
				trainerID = au.UID
			} else if clientID == "" {
				clientID = au.UID
			}
			if clientID == "" {
				Fail(w, 400, "clientId is required")
				return
			}

			ft, err := d.FeesSvc.ResolveTierFor(r.Context(), trainerID, clientID)
			if err != nil {
				status, msg := mapFeesError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"feeType": ft})
		})

		// ===== Existing clients / relationships =====
		pr.Post("/v1/clients/existing", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in struct {
				ClientID string `json:"clientId"`
				Name     string `json:"name,omitempty"`
				Email    string `json:"email,omitempty"`
				Phone    string `json:"phone,omitempty"`
			}
			if err := ReadJSON(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.RelationshipSvc.MarkAsExistingClient(r.Context(), au.UID, in.ClientID, relationship.ContactInfo{
				Name:  in.Name,
				Email: in.Email,
				Phone: in.Phone,
			})
			if err != nil {
				status, msg := mapRelationshipError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/clients/existing/check", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			email := strings.TrimSpace(r.URL.Query().Get("email"))
			name := strings.TrimSpace(r.URL.Query().Get("name"))

			found, err := d.RelationshipSvc.FindExistingByContact(r.Context(), au.UID, email, name)
			if err != nil {
				status, msg := mapRelationshipError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"exists": found})
		})

		pr.Get("/v1/relationships/{trainerId}/{clientId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			trainerID := chi.URLParam(r, "trainerId")
			clientID := chi.URLParam(r, "clientId")

			out, err := d.RelationshipSvc.GetForCaller(r.Context(), au.UID, trainerID, clientID)
			if err != nil {
				status, msg := mapRelationshipError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})
	})

	return r
}

func mapBookingError(err error) (int, string) {
	switch {
	case booking.IsErrBadRequest(err):
		return 400, err.Error()
	case booking.IsErrNotFound(err):
		return 404, "booking not found"
	case booking.IsErrInvalidTransition(err), booking.IsErrConflict(err):
		return 409, "booking already responded to"
	case booking.IsErrNotExpired(err):
		return 409, "response window still open"
	case booking.IsErrPaymentFailed(err):
		return 502, "payment operation failed"
	case booking.IsErrStoreUnavailable(err), relationship.IsErrStoreUnavailable(err):
		return 503, "temporarily unavailable"
	default:
		return 500, "internal error"
	}
}

func mapRelationshipError(err error) (int, string) {
	switch {
	case relationship.IsErrBadRequest(err):
		return 400, err.Error()
	case relationship.IsErrNotFound(err):
		return 404, "relationship not found"
	case relationship.IsErrStoreUnavailable(err):
		return 503, "temporarily unavailable"
	default:
		return 500, "internal error"
	}
}

func mapFeesError(err error) (int, string) {
	switch {
	case fees.IsErrBadRequest(err):
		return 400, err.Error()
	case relationship.IsErrStoreUnavailable(err):
		return 503, "temporarily unavailable"
	default:
		return 500, "internal error"
	}
}

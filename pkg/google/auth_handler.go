package google

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/controle-c/jarvis/internal/config"
	"github.com/controle-c/jarvis/internal/rest"
	"github.com/controle-c/jarvis/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// ErrNotConnected means there is no refresh token on file for the user:
// the only way forward is the user-driven consent redirect.
var ErrNotConnected = errors.New("google calendar is not connected")

// ErrUnauthenticated means the calendar API rejected our token even after a
// forced refresh. It is surfaced to the user, never retried further.
var ErrUnauthenticated = errors.New("google calendar authentication failed")

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type connectionStatus struct {
	Connected bool `json:"connected"`
}

// GoogleAuth owns the OAuth consent flow and the per-user token cache.
// The client secret lives only here, server-side; browsers never exchange
// refresh tokens themselves.
type GoogleAuth struct {
	db          *sql.DB
	userService user.Service
	oauthConfig *oauth2.Config
	tokens      *tokenCache
}

func NewGoogleAuth(db *sql.DB, userService user.Service, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope},
	}

	return &GoogleAuth{db: db, userService: userService, oauthConfig: oauthConfig, tokens: newTokenCache()}
}

func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	currentUser, err := g.userService.GetCurrentUser(r.Context())
	if err != nil {
		log.Error("unable to retrieve current user: ", err)
		http.Error(w, "unable to retrieve current user", http.StatusInternalServerError)
		return
	}
	userId := currentUser.Id

	_, err = g.db.ExecContext(r.Context(), "DELETE FROM google_calendar_auth WHERE user_id = $1", userId)
	if err != nil {
		log.Errorf("failed to delete old Google auth row for user %d: %v", userId, err)
		g.writeAuthFailure(w)
		return
	}
	g.tokens.invalidate(userId)

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	// store nonce for the use in the DB
	_, err = g.db.ExecContext(r.Context(), "INSERT INTO google_calendar_auth (user_id, nonce) VALUES ($1, $2)", userId, stateNonce)
	if err != nil {
		log.Errorf("failed to store Google auth nonce for user %d: %v", userId, err)
		g.writeAuthFailure(w)
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(googleAuthRedirect{RedirectUrl: u}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	code := r.FormValue("code")
	state := r.FormValue("state")

	parts := strings.SplitN(state, "|", 2)
	if len(parts) != 2 {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	finalUrl := parts[0]
	nonce := parts[1]

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		err := fmt.Errorf("unable to exchange code for token: %v", err)
		log.Error(err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	_, err = g.db.ExecContext(r.Context(),
		"UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4",
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		err := fmt.Errorf("unable to store Google auth token for nonce: %v", err)
		log.Error(err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		log.Error("unable to retrieve current user: ", err)
		http.Error(w, "unable to retrieve current user", http.StatusInternalServerError)
		return
	}
	_, err = g.db.ExecContext(r.Context(), "DELETE FROM google_calendar_auth WHERE user_id = $1", userId)
	if err != nil {
		log.Errorf("failed to delete Google auth row for user %d: %v", userId, err)
		g.writeAuthFailure(w)
		return
	}
	g.tokens.invalidate(userId)
	w.WriteHeader(http.StatusNoContent)
}

// Status reports whether a refresh token is on file for the current user.
func (g *GoogleAuth) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		log.Error("unable to retrieve current user: ", err)
		http.Error(w, "unable to retrieve current user", http.StatusInternalServerError)
		return
	}

	_, err = g.refreshToken(r.Context(), userId)
	connected := err == nil

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(connectionStatus{Connected: connected}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// refreshToken loads the stored refresh token for the user.
// Returns ErrNotConnected when no usable row exists.
func (g *GoogleAuth) refreshToken(ctx context.Context, userId int) (string, error) {
	var refreshToken sql.NullString
	err := g.db.QueryRowContext(ctx, "SELECT refresh_token FROM google_calendar_auth WHERE user_id = $1", userId).
		Scan(&refreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotConnected
	} else if err != nil {
		return "", fmt.Errorf("unable to retrieve Google refresh token: %w", err)
	}
	if !refreshToken.Valid || refreshToken.String == "" {
		// A nonce row without a completed callback.
		return "", ErrNotConnected
	}
	return refreshToken.String, nil
}

// accessToken returns a valid access token for the user, exchanging the
// stored refresh token when the cache slot is empty. The per-user lock in
// the cache makes the refresh single-flight: concurrent callers wait for
// one exchange instead of issuing their own.
func (g *GoogleAuth) accessToken(ctx context.Context, userId int) (string, error) {
	return g.tokens.get(userId, func() (*oauth2.Token, error) {
		refreshToken, err := g.refreshToken(ctx, userId)
		if err != nil {
			return nil, err
		}
		token, err := g.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
		if err != nil {
			// The refresh call itself is not retried.
			log.Errorf("failed to refresh Google access token for user %d: %v", userId, err)
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return token, nil
	})
}

// Client returns an HTTP client for the Google Calendar API that injects the
// bearer token and performs at most one silent retry on 401.
func (g *GoogleAuth) Client(ctx context.Context, userId int) (*http.Client, error) {
	// Probe for a connection first so callers can distinguish "needs
	// consent" from transport failures.
	if _, err := g.refreshToken(ctx, userId); err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &retryTransport{auth: g, userId: userId, base: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}, nil
}

func (g *GoogleAuth) writeAuthFailure(w http.ResponseWriter) {
	w.WriteHeader(http.StatusInternalServerError)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error: "Failed to handle Google authentication",
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

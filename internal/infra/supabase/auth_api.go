package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// AuthAPI implementation: hosted auth via GoTrue
// ============================================================

// doAuth executes a request against the GoTrue API. The bearer token defaults
// to the anon key; user-scoped endpoints pass the session's access token.
func (c *Client) doAuth(ctx context.Context, method, path, bearer string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	endpoint := fmt.Sprintf("%s/auth/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, err
	}

	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase auth: request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// authError extracts the provider's error message from a GoTrue response
// body. The message is surfaced verbatim; sign-in callers show it as-is.
func authError(body []byte, status int) error {
	var payload struct {
		Msg       string `json:"msg"`
		Message   string `json:"message"`
		ErrorDesc string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.ErrorDesc
	if msg == "" {
		msg = payload.Msg
	}
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("auth provider returned status %d", status)
	}
	return &domain.ErrAuth{Message: msg}
}

// gotrueUser is the user object GoTrue embeds in its responses.
type gotrueUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt string         `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

func (u gotrueUser) toDomain() *domain.AuthUser {
	name, _ := u.UserMetadata["name"].(string)
	return &domain.AuthUser{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != "",
		Name:           name,
	}
}

// SignUp registers a new identity. Metadata travels in the "data" field and
// lands in the user's metadata on the provider side.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignUp")
	defer span.End()

	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	body, status, err := c.doAuth(ctx, http.MethodPost, "signup", "", payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, authError(body, status)
	}

	var user gotrueUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	return user.toDomain(), nil
}

// SignInWithPassword exchanges credentials for a session. Provider failures
// come back as ErrAuth with the provider's message untouched.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string, persist bool) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignInWithPassword")
	defer span.End()

	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	body, status, err := c.doAuth(ctx, http.MethodPost, "token?grant_type=password", "", payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, authError(body, status)
	}

	var resp struct {
		AccessToken  string     `json:"access_token"`
		RefreshToken string     `json:"refresh_token"`
		ExpiresIn    int        `json:"expires_in"`
		User         gotrueUser `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	return &domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Persistent:   persist,
		User:         resp.User.toDomain(),
	}, nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SignOut")
	defer span.End()

	body, status, err := c.doAuth(ctx, http.MethodPost, "logout", accessToken, nil)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status < 200 || status >= 300 {
		return authError(body, status)
	}
	return nil
}

// SendMagicLink asks the provider to e-mail a one-time sign-in link.
func (c *Client) SendMagicLink(ctx context.Context, email string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SendMagicLink")
	defer span.End()

	payload := map[string]any{
		"email":       email,
		"create_user": false,
	}
	body, status, err := c.doAuth(ctx, http.MethodPost, "otp", "", payload)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status < 200 || status >= 300 {
		return authError(body, status)
	}
	return nil
}

// RequestPasswordReset triggers the provider's recovery e-mail.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RequestPasswordReset")
	defer span.End()

	body, status, err := c.doAuth(ctx, http.MethodPost, "recover", "", map[string]any{"email": email})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status < 200 || status >= 300 {
		return authError(body, status)
	}
	return nil
}

// ResendVerification re-sends the sign-up confirmation e-mail.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	ctx, span := tracer.Start(ctx, "Supabase.ResendVerification")
	defer span.End()

	payload := map[string]any{
		"type":  "signup",
		"email": email,
	}
	body, status, err := c.doAuth(ctx, http.MethodPost, "resend", "", payload)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status < 200 || status >= 300 {
		return authError(body, status)
	}
	return nil
}

// OAuthURL builds the provider-redirect URL for browser-based OAuth.
func (c *Client) OAuthURL(provider, redirectTo string) string {
	v := url.Values{}
	v.Set("provider", provider)
	if redirectTo != "" {
		v.Set("redirect_to", redirectTo)
	}
	return fmt.Sprintf("%s/auth/v1/authorize?%s", c.baseURL, v.Encode())
}

// GetUser resolves the identity behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUser")
	defer span.End()

	body, status, err := c.doAuth(ctx, http.MethodGet, "user", accessToken, nil)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session"}
	}
	if status < 200 || status >= 300 {
		return nil, authError(body, status)
	}

	var user gotrueUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return user.toDomain(), nil
}

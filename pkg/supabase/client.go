// Package supabase talks to the managed auth (GoTrue) and storage REST APIs.
package supabase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNotConfigured = errors.New("supabase is not configured")
	ErrExchange      = errors.New("auth code exchange failed")
)

// Client is a thin REST client built on fiber's Agent.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	timeout    time.Duration
}

func New(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		timeout:    15 * time.Second,
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.anonKey != ""
}

// AuthUser is the subset of a GoTrue user this service keeps.
type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// DisplayName picks the best name the provider supplied.
func (u *AuthUser) DisplayName() string {
	for _, k := range []string{"full_name", "fullName", "name"} {
		if v, ok := u.UserMetadata[k].(string); ok && v != "" {
			return v
		}
	}
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// NewPKCE returns a random code verifier and its S256 challenge.
func NewPKCE() (verifier, challenge string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

// AuthorizeURL is where the browser goes to sign in with provider.
func (c *Client) AuthorizeURL(provider, redirectTo, challenge string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "s256")
	return c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

// ExchangeCode trades an authorization code for the signed-in user.
func (c *Client) ExchangeCode(authCode, verifier string) (*AuthUser, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	a := fiber.Post(c.baseURL + "/auth/v1/token?grant_type=pkce")
	a.Set("apikey", c.anonKey)
	a.Timeout(c.timeout)
	a.JSON(fiber.Map{"auth_code": authCode, "code_verifier": verifier})

	var out struct {
		AccessToken string   `json:"access_token"`
		User        AuthUser `json:"user"`
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrExchange, errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrExchange, code, truncate(body))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if out.User.ID == "" {
		return nil, fmt.Errorf("%w: response has no user", ErrExchange)
	}
	return &out.User, nil
}

func (c *Client) storageKey() string {
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}

// Upload stores data at bucket/path, replacing an existing object.
func (c *Client) Upload(bucket, path, contentType string, data []byte) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}
	a := fiber.Post(c.objectURL(bucket, path))
	a.Set("apikey", c.storageKey())
	a.Set(fiber.HeaderAuthorization, "Bearer "+c.storageKey())
	a.Set("x-upsert", "true")
	a.ContentType(contentType)
	a.Body(data)
	a.Timeout(c.timeout)
	return expectOK(a.Bytes())
}

// Remove deletes bucket/path.
func (c *Client) Remove(bucket, path string) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}
	a := fiber.Delete(c.objectURL(bucket, path))
	a.Set("apikey", c.storageKey())
	a.Set(fiber.HeaderAuthorization, "Bearer "+c.storageKey())
	a.Timeout(c.timeout)
	return expectOK(a.Bytes())
}

// PublicURL is the URL of an object in a public bucket.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}

func (c *Client) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)
}

func expectOK(code int, body []byte, errs []error) error {
	if len(errs) > 0 {
		return errs[0]
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("storage request failed: status %d: %s", code, truncate(body))
	}
	return nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const tokenTTL = 30 * 24 * time.Hour

// Claims carries the authenticated email through the session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service exchanges Google OAuth codes for a verified email and issues
// bearer tokens for the browser session.
type Service struct {
	oauthCfg *oauth2.Config
	jwtKey   []byte
}

func New(clientID, clientSecret, redirectURL, jwtSecret string) *Service {
	return &Service{
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		jwtKey: []byte(jwtSecret),
	}
}

// AuthURL returns the Google consent page URL for the given state.
func (s *Service) AuthURL(state string) string {
	return s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's email address via
// the Google userinfo endpoint.
func (s *Service) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	svc, err := oauthapi.NewService(ctx, option.WithTokenSource(s.oauthCfg.TokenSource(ctx, tok)))
	if err != nil {
		return "", fmt.Errorf("init userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("identity provider returned no email")
	}
	return info.Email, nil
}

// IssueToken signs a session token for the authenticated email.
func (s *Service) IssueToken(email string) (string, error) {
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

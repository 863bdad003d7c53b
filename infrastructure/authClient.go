package infrastructure

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/festivo-org/concierge/models"
)

type (
	AuthConfig struct {
		Secret string `required:"true"`
		Issuer string `default:"festivo"`
	}

	// AuthClient resolves the bearer credential on a request to an actor
	// identity. Tokens are verified locally against the shared HS256 secret
	// issued by the accounts service.
	AuthClient struct {
		config AuthConfig
	}

	authClaims struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}
)

func NewAuthClient(config AuthConfig) *AuthClient {
	return &AuthClient{config: config}
}

// Authenticate returns the identity behind the Authorization header, or nil
// when the request carries no usable credential.
func (c *AuthClient) Authenticate(req *http.Request) *models.TokenData {
	header := req.Header.Get("Authorization")
	if header == "" {
		return nil
	}

	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil
	}

	token, err := c.verify(raw)
	if err != nil {
		return nil
	}
	return token
}

func (c *AuthClient) verify(raw string) (*models.TokenData, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(c.config.Secret), nil
	}, jwt.WithIssuer(c.config.Issuer))
	if err != nil {
		return nil, errors.Wrap(err, "verifying token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	return &models.TokenData{
		UserID: claims.Subject,
		Email:  models.NormalizeEmail(claims.Email),
	}, nil
}

func AuthConfigProvider() (AuthConfig, error) {
	var config AuthConfig
	if err := envconfig.Process("auth", &config); err != nil {
		return AuthConfig{}, err
	}
	return config, nil
}

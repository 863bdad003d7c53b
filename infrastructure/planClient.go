package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/festivo-org/concierge/models"
)

type (
	PlanConfig struct {
		PlanClientAddress string        `split_words:"true" required:"true"`
		Timeout           time.Duration `default:"5s"`
	}

	// PlanClient asks the billing service which tier an account is on. The
	// answer is looked up per request and not cached; entitlement changes
	// must be visible on the very next call.
	PlanClient struct {
		host       string
		timeout    time.Duration
		httpClient *http.Client
	}

	planResponse struct {
		Plan models.PlanTier `json:"plan"`
	}
)

func NewPlanClient(config PlanConfig, httpClient *http.Client) *PlanClient {
	return &PlanClient{
		host:       config.PlanClientAddress,
		timeout:    config.Timeout,
		httpClient: httpClient,
	}
}

func (c *PlanClient) GetPlan(ctx context.Context, userID string) (models.PlanTier, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/users/%s/plan", c.host, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "building plan request")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "requesting plan")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("unexpected response code %d from plan service", res.StatusCode)
	}

	var body planResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decoding plan response")
	}
	if body.Plan == "" {
		return "", errors.New("plan service returned an empty tier")
	}
	return body.Plan, nil
}

func PlanConfigProvider() (PlanConfig, error) {
	var config PlanConfig
	if err := envconfig.Process("billing", &config); err != nil {
		return PlanConfig{}, err
	}
	return config, nil
}

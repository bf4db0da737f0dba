// Package comps looks up estimated after-repair values from an external
// comparable-sales API. The core treats it as an opaque estimated-value
// provider feeding the maximum-offer calculator.
package comps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/dealdesk/internal/model"
	"github.com/sells-group/dealdesk/internal/retry"
)

// Config configures the comps client.
type Config struct {
	Key         string  `mapstructure:"key"`
	BaseURL     string  `mapstructure:"base_url"`
	RatePerSec  float64 `mapstructure:"rate_per_sec"`
	Burst       int     `mapstructure:"burst"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// Estimate is the provider's opinion of a property's value.
type Estimate struct {
	Value      decimal.Decimal `json:"value"`
	Confidence float64         `json:"confidence"` // 0.0-1.0
	CompsUsed  int             `json:"comps_used"`
	AsOf       time.Time       `json:"as_of"`
}

// Provider abstracts the estimated-value lookup for testing and for
// callers that already know the ARV.
type Provider interface {
	EstimatedValue(ctx context.Context, addr model.Address) (*Estimate, error)
}

// Client queries the comparable-sales API.
type Client struct {
	client  *http.Client
	cfg     Config
	limiter *rate.Limiter
	policy  retry.Policy
}

var _ Provider = (*Client)(nil)

// New creates a comps client.
func New(cfg Config) *Client {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 15
	}
	return &Client{
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		policy:  retry.DefaultPolicy(),
	}
}

// EstimatedValue fetches the estimate for an address, retrying transient
// failures.
func (c *Client) EstimatedValue(ctx context.Context, addr model.Address) (*Estimate, error) {
	if addr.Street == "" || addr.ZipCode == "" {
		return nil, eris.New("comps: street and zip_code are required")
	}

	endpoint := fmt.Sprintf("%s/estimate?%s", c.cfg.BaseURL, url.Values{
		"street": {addr.Street},
		"city":   {addr.City},
		"state":  {addr.State},
		"zip":    {addr.ZipCode},
	}.Encode())

	est, err := retry.DoVal(ctx, c.policy, "comps.estimate", func(ctx context.Context) (*Estimate, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "comps: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, eris.Wrap(err, "comps: build request")
		}
		if c.cfg.Key != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Key)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network failures carry their own retryability signal.
			return nil, eris.Wrap(err, "comps: request")
		}
		return decodeResponse(resp)
	})
	if err != nil {
		return nil, eris.Wrap(err, "comps: estimate")
	}

	zap.L().Debug("comps estimate",
		zap.String("street", addr.Street),
		zap.String("value", est.Value.String()),
		zap.Int("comps_used", est.CompsUsed),
	)
	return est, nil
}

func decodeResponse(resp *http.Response) (*Estimate, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var e Estimate
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			return nil, eris.Wrap(err, "comps: decode response")
		}
		return &e, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, eris.New("comps: no comparables for address")
	case retry.TransientStatus(resp.StatusCode):
		return nil, retry.MarkTransient(eris.Errorf("comps: status %d", resp.StatusCode), resp.StatusCode)
	default:
		return nil, eris.Errorf("comps: status %d", resp.StatusCode)
	}
}

package readiness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"golang.org/x/oauth2/clientcredentials"
)

// HTTPChecker calls a remote prerequisite-check service:
// GET {baseURL}?company_id=&month=&year= returning a report document.
type HTTPChecker struct {
	baseURL string
	client  *http.Client
}

func NewHTTPChecker(baseURL string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChecker{baseURL: baseURL, client: client}
}

// NewClientCredentialsClient returns an HTTP client that authenticates to the
// readiness service with the OAuth2 client credentials grant.
func NewClientCredentialsClient(ctx context.Context, clientID, clientSecret, tokenURL string, scopes []string) *http.Client {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return config.Client(ctx)
}

type remoteError struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPChecker) Validate(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return readiness.Report{}, fmt.Errorf("invalid readiness url: %w", err)
	}
	q := u.Query()
	q.Set("company_id", companyID)
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return readiness.Report{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return readiness.Report{}, fmt.Errorf("readiness request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return readiness.Report{}, fmt.Errorf("failed to read readiness response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var re remoteError
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &re) == nil {
			switch {
			case re.Error != nil && re.Error.Message != "":
				msg = re.Error.Message
			case re.Message != "":
				msg = re.Message
			}
		}
		return readiness.Report{}, fmt.Errorf("%w %d: %s", readiness.ErrCheckerStatus, resp.StatusCode, msg)
	}

	// HRIS services wrap payloads in {"success":..,"data":..}; bare reports are accepted too.
	var envelope struct {
		Data *readiness.Report `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return *envelope.Data, nil
	}

	var report readiness.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return readiness.Report{}, fmt.Errorf("failed to decode readiness report: %w", err)
	}
	return report, nil
}

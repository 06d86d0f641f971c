// Package wto is a thin client for the WTO timeseries API. It fetches
// merchandise import observations for a set of reporting economies and
// hands them to the dataset package untouched.
package wto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"wtodash/internal/utils"
)

const (
	DefaultBaseURL = "https://api.wto.org/timeseries/v1"

	// IndicatorImports is the annual merchandise import value series.
	IndicatorImports = "ITS_MTV_AM"

	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
	USER_AGENT            = "Mozilla/5.0 (X11; Linux x86_64; rv:82.0) Gecko/20100101 Firefox/82.0"

	// The API caps result sets, so we ask for the maximum upfront.
	maxRecords = 20000

	defaultTimeout = 20 * time.Second
)

// Economies maps the tracked reporting economy codes to their names as
// the API reports them.
var Economies = map[string]string{
	"156": "China",
	"276": "Germany",
	"840": "United States of America",
}

// DefaultEconomies is the fixed set of codes the dashboard tracks.
var DefaultEconomies = []string{"156", "276", "840"}

// Error kinds carried by FetchError.
const (
	KindTransport = "transport"
	KindAuth      = "auth"
	KindParse     = "parse"
	KindEmpty     = "empty_result"
)

// FetchError tags a failed fetch with its cause so callers can decide
// what to show the user without string matching.
type FetchError struct {
	Kind   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("wto fetch failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("wto fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind string) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

// Query describes one fetch: which economies and which year window.
type Query struct {
	Economies []string
	YearFrom  int
	YearTo    int
}

type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// NewClient builds a WTO API client around the given subscription key.
func NewClient(key string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	// One attempt per fetch: the user re-triggering is the retry policy.
	retryClient.RetryMax = 0
	retryClient.HTTPClient.Timeout = defaultTimeout

	c := &Client{
		key:     key,
		baseURL: DefaultBaseURL,
		http:    retryClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a single GET covering every requested economy and the full
// year window, and returns the raw observation objects for the shaper.
// No filtering happens here.
func (c *Client) Fetch(ctx context.Context, q Query) ([]map[string]interface{}, error) {
	if c.key == "" {
		return nil, &FetchError{Kind: KindAuth, Err: errors.New("no API subscription key configured")}
	}

	params := url.Values{}
	params.Set("i", IndicatorImports)
	params.Set("r", strings.Join(q.Economies, ","))
	params.Set("p", "all")
	params.Set("ps", fmt.Sprintf("%d-%d", q.YearFrom, q.YearTo))
	params.Set("fmt", "json")
	params.Set("lang", "1")
	params.Set("head", "H")
	params.Set("max", strconv.Itoa(maxRecords))

	endpoint := c.baseURL + "/data?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}
	req.Header.Set(subscriptionKeyHeader, c.key)
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{Kind: KindAuth, Status: resp.StatusCode, Err: errors.New("subscription key rejected")}
	case resp.StatusCode != http.StatusOK:
		return nil, &FetchError{Kind: KindTransport, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if !gjson.ValidBytes(body) {
		utils.Log.Debugf("unparseable WTO response (first 200 bytes): %.200s", body)
		return nil, &FetchError{Kind: KindParse, Status: resp.StatusCode, Err: errors.New("response body is not valid JSON")}
	}

	dataset := gjson.GetBytes(body, "Dataset")
	if !dataset.Exists() || !dataset.IsArray() {
		utils.Log.Debugf("WTO response has no Dataset array, top-level keys: %s", strings.Join(topLevelKeys(body), ", "))
		return nil, &FetchError{Kind: KindParse, Status: resp.StatusCode, Err: errors.New(`response has no "Dataset" array`)}
	}

	rows := dataset.Array()
	if len(rows) == 0 {
		return nil, &FetchError{Kind: KindEmpty, Status: resp.StatusCode, Err: errors.New("no observations in the requested window")}
	}

	raws := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.Value().(map[string]interface{}); ok {
			raws = append(raws, m)
		}
	}
	return raws, nil
}

func topLevelKeys(body []byte) []string {
	var keys []string
	gjson.ParseBytes(body).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

// TrackedNames resolves economy codes to reporter names. It returns nil
// when any code is untracked, so normalization falls back to accepting
// whatever reporters the API returns.
func TrackedNames(codes []string) []string {
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		name, ok := Economies[code]
		if !ok {
			return nil
		}
		names = append(names, name)
	}
	return names
}

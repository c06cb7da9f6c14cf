package listing

import (
	"context"
	"fmt"
	"listingscraper/internal/catalog"
	"listingscraper/internal/components/telemetry"
	"listingscraper/lib/restyutil"
	oteltelemetry "listingscraper/lib/telemetry"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseUrl   = "https://blinkit.com/v1/layout/listing_widgets"
	DefaultUserAgent = "Mozilla/5.0"
	// a live session requires real values for these cookies
	DefaultCookie  = "__cf_bm=...your values...; __cfruid=...; _cfuvid=..."
	DefaultTimeout = 10 * time.Second
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

type ClientOptions struct {
	BaseUrl   string
	UserAgent string
	Cookie    string
	Timeout   time.Duration
	// DumpOutput receives every request/response exchange, it can be nil.
	DumpOutput restyutil.InstrumentOutput
}

// Client requests the listing of one category pair at one location.
type Client struct {
	http    *resty.Client
	baseUrl string
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	parsed, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseUrl)
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Content-Type", "application/json")
	if opts.Cookie != "" {
		client.SetHeader("Cookie", opts.Cookie)
	}

	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("listing_client", tel))
	oteltelemetry.InstrumentResty(client, "listingscraper/listing/http")
	restyutil.InstrumentClient(client, opts.DumpOutput)

	return &Client{http: client, baseUrl: opts.BaseUrl}, nil
}

// FetchListing posts an empty json body to the listing endpoint and returns
// the raw response body. The coordinates travel as the `lat` and `lon`
// headers, the category ids as the `m1_cat` and `m2_cat` query parameters.
func (c *Client) FetchListing(ctx context.Context, loc catalog.Location, cat catalog.Category) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("lat", loc.Latitude).
		SetHeader("lon", loc.Longitude).
		SetQueryParam("m1_cat", cat.L1ID).
		SetQueryParam("m2_cat", cat.L2ID).
		SetBody([]byte("{}")).
		Post(c.baseUrl)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, &StatusError{StatusCode: res.StatusCode(), Status: res.Status()}
	}
	return res.Body(), nil
}

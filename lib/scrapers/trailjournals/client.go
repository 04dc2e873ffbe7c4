package trailjournals

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"trailbook/lib/restyutil"
	"trailbook/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/trailjournals")

const defaultBaseUrl = "https://www.trailjournals.com"

// FetchError reports an HTTP failure on one entry-listing page after
// retries were exhausted. Extraction aborts; pages fetched before the
// failure are still returned to the caller.
type FetchError struct {
	Page int
	Err  error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetch entries page %d: %s", e.Page, e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

type ClientOptions struct {
	BaseUrl string
	// MinDelay is the minimum wait between successive requests.
	// Defaults to one second; the site is a volunteer-run archive and
	// does not appreciate being hammered.
	MinDelay time.Duration
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	minDelay    time.Duration
	lastRequest time.Time
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.MinDelay == 0 {
		opts.MinDelay = time.Second
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	client.SetRetryCount(3)
	client.SetRetryWaitTime(time.Second)
	client.SetRetryMaxWaitTime(time.Second * 8)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return res.StatusCode() == 429 || res.StatusCode() >= 500
	})

	telemetry.InstrumentResty(client, "scrapers/trailjournals/http")

	return &Client{
		BaseUrl:  baseUrl,
		Http:     client,
		minDelay: opts.MinDelay,
	}, nil
}

func (c *Client) SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, output)
}

// throttle blocks until the configured minimum delay since the last
// request has elapsed.
func (c *Client) throttle(ctx context.Context) error {
	if !c.lastRequest.IsZero() {
		wait := c.minDelay - time.Since(c.lastRequest)
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// Page fetches the raw markup of one entry-listing page of a journal.
// Pages are numbered from 1.
func (c *Client) Page(ctx context.Context, journalID int, page int) (string, error) {
	ctx, span := tracer.Start(ctx, "Page")
	defer span.End()

	if err := c.throttle(ctx); err != nil {
		return "", FetchError{Page: page, Err: err}
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(fmt.Sprintf("/journal/entries/%d", journalID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", FetchError{Page: page, Err: err}
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("HTTP %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", FetchError{Page: page, Err: err}
	}

	return res.String(), nil
}

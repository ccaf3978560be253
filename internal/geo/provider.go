package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/nao1215/iprecon/internal/model"
	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
)

// maxResponseSize caps how much of a provider response is read.
const maxResponseSize = 1 << 20

// ipPlaceholder is replaced by the queried address in Endpoint.URL.
const ipPlaceholder = "{ip}"

// Location is a resolved approximate location.
type Location struct {
	City    string
	Country string
}

// String renders the location as "city, country".
func (l Location) String() string {
	return l.City + ", " + l.Country
}

// Provider looks up the location of a single address.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// Lookup resolves ip. It must respect ctx for cancellation and deadline.
	Lookup(ctx context.Context, ip netip.Addr) (Location, error)
}

// Endpoint describes a JSON-over-HTTP geolocation service.
type Endpoint struct {
	// Name identifies the provider in logs.
	Name string `yaml:"name" json:"name"`

	// URL is the request URL; "{ip}" is replaced by the address.
	URL string `yaml:"url" json:"url"`

	// CityPath and CountryPath are gjson paths into the response body.
	// Nested paths such as "country.name" are allowed.
	CityPath    string `yaml:"city_path" json:"city_path"`
	CountryPath string `yaml:"country_path" json:"country_path"`

	// ErrorPath, when set, marks a response as failed if the value at the
	// path equals ErrorValue.
	ErrorPath  string `yaml:"error_path,omitempty" json:"error_path,omitempty"`
	ErrorValue string `yaml:"error_value,omitempty" json:"error_value,omitempty"`

	// RequestsPerMinute limits requests to this provider across all
	// pipelines. Zero means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty" json:"requests_per_minute,omitempty"`
}

// DefaultEndpoints returns the built-in provider chain in query order.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{
			Name:              "ip-api.com",
			URL:               "http://ip-api.com/json/{ip}",
			CityPath:          "city",
			CountryPath:       "country",
			ErrorPath:         "status",
			ErrorValue:        "fail",
			RequestsPerMinute: 45,
		},
		{
			Name:        "ipinfo.io",
			URL:         "https://ipinfo.io/{ip}/json",
			CityPath:    "city",
			CountryPath: "country",
			ErrorPath:   "bogon",
			ErrorValue:  "true",
		},
		{
			Name:        "geoip.nekudo.com",
			URL:         "https://geoip.nekudo.com/api/{ip}",
			CityPath:    "city",
			CountryPath: "country.name",
		},
		{
			Name:        "ipapi.co",
			URL:         "https://ipapi.co/{ip}/json/",
			CityPath:    "city",
			CountryPath: "country_name",
			ErrorPath:   "error",
			ErrorValue:  "true",
		},
		{
			Name:        "freegeoip.app",
			URL:         "https://freegeoip.app/json/{ip}",
			CityPath:    "city",
			CountryPath: "country_name",
		},
	}
}

// HTTPProvider is a Provider backed by an Endpoint.
type HTTPProvider struct {
	endpoint Endpoint
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTPProvider creates a provider for endpoint using client.
// The client is shared; its own timeout, if any, still applies.
func NewHTTPProvider(endpoint Endpoint, client *http.Client) (*HTTPProvider, error) {
	if endpoint.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidEndpoint)
	}
	if !strings.Contains(endpoint.URL, ipPlaceholder) {
		return nil, fmt.Errorf("%w: %s: url must contain %s", ErrInvalidEndpoint, endpoint.Name, ipPlaceholder)
	}
	if endpoint.CityPath == "" {
		endpoint.CityPath = "city"
	}
	if endpoint.CountryPath == "" {
		endpoint.CountryPath = "country"
	}
	if client == nil {
		client = http.DefaultClient
	}

	p := &HTTPProvider{
		endpoint: endpoint,
		client:   client,
	}
	if endpoint.RequestsPerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(endpoint.RequestsPerMinute)), 1)
	}
	return p, nil
}

// NewHTTPProviders creates one provider per endpoint, preserving order.
func NewHTTPProviders(endpoints []Endpoint, client *http.Client) ([]Provider, error) {
	providers := make([]Provider, 0, len(endpoints))
	for _, ep := range endpoints {
		p, err := NewHTTPProvider(ep, client)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// Name returns the endpoint name.
func (p *HTTPProvider) Name() string {
	return p.endpoint.Name
}

// Lookup queries the endpoint for ip.
func (p *HTTPProvider) Lookup(ctx context.Context, ip netip.Addr) (Location, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Location{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	url := strings.ReplaceAll(p.endpoint.URL, ipPlaceholder, ip.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Location{}, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Location{}, fmt.Errorf("failed to read response: %w", err)
	}

	return p.parse(body)
}

// parse extracts the location from a response body.
func (p *HTTPProvider) parse(body []byte) (Location, error) {
	if !gjson.ValidBytes(body) {
		return Location{}, ErrMalformedResponse
	}

	if p.endpoint.ErrorPath != "" {
		v := gjson.GetBytes(body, p.endpoint.ErrorPath)
		if v.Exists() && v.String() == p.endpoint.ErrorValue {
			msg := gjson.GetBytes(body, "message").String()
			if msg == "" {
				msg = gjson.GetBytes(body, "reason").String()
			}
			return Location{}, fmt.Errorf("%w: %s=%s %s", ErrProviderRejected, p.endpoint.ErrorPath, v.String(), msg)
		}
	}

	return Location{
		City:    field(body, p.endpoint.CityPath),
		Country: field(body, p.endpoint.CountryPath),
	}, nil
}

// field returns the normalized string at path, or UnknownLocation.
func field(body []byte, path string) string {
	v := gjson.GetBytes(body, path)
	if v.Type != gjson.String {
		return model.UnknownLocation
	}
	s := strings.TrimSpace(norm.NFC.String(v.String()))
	if s == "" {
		return model.UnknownLocation
	}
	return s
}

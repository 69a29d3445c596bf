package matomo

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/logging"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/validation"
)

// Client is a tracker client for one Matomo site. It is immutable after
// construction apart from handler registration, so a single Client may be
// shared across goroutines and calls may run concurrently.
type Client struct {
	siteID     int
	trackerURL string
	tokenAuth  string
	userAgent  string
	httpClient *http.Client
	logger     logging.Logger

	mu               sync.RWMutex
	deliveryHandlers []func(DeliveryError)
	hitHandlers      []func(Hit)
}

// DeliveryError describes one failed dispatch. StatusCode is the HTTP
// status for rejected requests and 0 for transport-level failures, in
// which case Message carries the failure description.
type DeliveryError struct {
	StatusCode int
	Message    string
	Err        error
}

// Hit describes one dispatched tracking request, delivered to observers
// registered with OnHit after the response (or failure) is known.
type Hit struct {
	Method     string
	URL        string
	Fragments  []string // bulk submissions only, in input order
	StatusCode int      // 0 when the transport failed
}

// Option configures a Client at construction time.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	skipValidation bool
	tokenAuth      string
	userAgent      string
	logger         logging.Logger
}

// WithHTTPClient sets the HTTP client used for dispatch. The default is
// http.DefaultClient; the SDK adds no timeout of its own, so callers who
// need one supply it here or through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithoutEndpointValidation disables the tracking-script suffix check on
// the tracker URL. Scheme and host validation still apply.
func WithoutEndpointValidation() Option {
	return func(o *options) { o.skipValidation = true }
}

// WithTokenAuth sets the API token sent with bulk submissions. It is also
// required server-side for authenticated overrides (cip, cdt, geo fields).
func WithTokenAuth(token string) Option {
	return func(o *options) { o.tokenAuth = token }
}

// WithUserAgent sets the User-Agent header of outgoing requests. This is
// the SDK's own transport identity; use Params.UserAgent to attribute a
// hit to an end user's browser.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a tracker client for the given site and endpoint.
//
// siteID must be positive. trackerURL must be an absolute http(s) URL and,
// unless WithoutEndpointValidation is given, end in one of the recognized
// tracking-script filenames (matomo.php, piwik.php).
func New(siteID int, trackerURL string, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if siteID <= 0 {
		return nil, sdkerrors.NewValidationError("invalid_site_id",
			"site id must be a positive integer, got %d", siteID)
	}

	if err := validation.ValidateEndpoint(trackerURL, !o.skipValidation); err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := o.logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Client{
		siteID:     siteID,
		trackerURL: trackerURL,
		tokenAuth:  o.tokenAuth,
		userAgent:  o.userAgent,
		httpClient: httpClient,
		logger:     logger.WithComponent("matomo"),
	}, nil
}

// ParseSiteID parses a site id from its string form, for callers reading
// the id from configuration or the environment.
func ParseSiteID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, sdkerrors.NewValidationError("invalid_site_id", "site id must not be empty")
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, sdkerrors.NewValidationError("invalid_site_id",
			"site id %q is not an integer", s).WithCause(err)
	}
	if id <= 0 {
		return 0, sdkerrors.NewValidationError("invalid_site_id",
			"site id must be a positive integer, got %d", id)
	}
	return id, nil
}

// SiteID returns the configured site identifier.
func (c *Client) SiteID() int { return c.siteID }

// TrackerURL returns the configured tracker endpoint.
func (c *Client) TrackerURL() string { return c.trackerURL }

// OnDeliveryError registers a handler called for every failed dispatch.
// Handlers are an observability hook: delivery failures are always also
// returned as errors from the operation that caused them. Handlers run
// synchronously on the calling goroutine.
func (c *Client) OnDeliveryError(handler func(DeliveryError)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveryHandlers = append(c.deliveryHandlers, handler)
}

// OnHit registers an observer called for every dispatched hit, successful
// or not. Observers registered after a hit never see it.
func (c *Client) OnHit(observer func(Hit)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hitHandlers = append(c.hitHandlers, observer)
}

func (c *Client) emitDeliveryError(derr DeliveryError) {
	c.mu.RLock()
	handlers := make([]func(DeliveryError), len(c.deliveryHandlers))
	copy(handlers, c.deliveryHandlers)
	c.mu.RUnlock()

	for _, handler := range handlers {
		handler(derr)
	}
}

func (c *Client) emitHit(hit Hit) {
	c.mu.RLock()
	observers := make([]func(Hit), len(c.hitHandlers))
	copy(observers, c.hitHandlers)
	c.mu.RUnlock()

	for _, observer := range observers {
		observer(hit)
	}
}

// basePairs returns the wire parameters for p with the client's identity
// appended: idsite and rec overwrite anything the caller supplied, so every
// outgoing hit is attributable to the configured site and marked as a
// trackable request. p is never mutated.
func (c *Client) basePairs(p Params) []pair {
	pairs := p.pairs()
	pairs = append(pairs, pair{"idsite", strconv.Itoa(c.siteID)})
	pairs = append(pairs, pair{"rec", "1"})
	return pairs
}

package matomo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/samber/lo"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
)

// bulkBody is the JSON envelope of a bulk submission: an ordered list of
// pre-encoded query-string fragments, not structured field objects.
type bulkBody struct {
	Requests  []string `json:"requests"`
	TokenAuth string   `json:"token_auth,omitempty"`
}

// TrackURL records a page view of the given URL. It is shorthand for
// Track with only the URL field set.
func (c *Client) TrackURL(ctx context.Context, pageURL string) (*http.Response, error) {
	return c.Track(ctx, Params{URL: pageURL})
}

// Track submits a single tracking request as a GET. The URL field is
// required; validation failures are returned before any network I/O.
//
// The returned response has its body drained and closed (the tracking
// endpoint answers with a pixel or a 204 that is never interpreted).
// Delivery failures are returned as errors of kind delivery and also
// broadcast to OnDeliveryError handlers.
func (c *Client) Track(ctx context.Context, p Params) (*http.Response, error) {
	if p.URL == "" {
		return nil, sdkerrors.NewValidationError("missing_url", "tracking request needs a url")
	}

	fullURL := c.trackerURL + "?" + encodePairs(c.basePairs(p))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, sdkerrors.NewValidationError("invalid_request", "cannot build tracking request").WithCause(err)
	}

	return c.dispatch(req, Hit{Method: http.MethodGet, URL: fullURL})
}

// TrackEvent records a custom event. EventCategory and EventAction are
// required; the hit is flagged as a custom action so it is not counted as
// a page view.
func (c *Client) TrackEvent(ctx context.Context, p Params) (*http.Response, error) {
	if p.EventCategory == "" || p.EventAction == "" {
		return nil, sdkerrors.NewValidationError("missing_event_fields",
			"event tracking needs EventCategory and EventAction")
	}
	p.CustomAction = true
	return c.Track(ctx, p)
}

// TrackContent records a content impression or interaction. ContentName
// and ContentPiece are required; the hit is flagged as a custom action.
func (c *Client) TrackContent(ctx context.Context, p Params) (*http.Response, error) {
	if p.ContentName == "" || p.ContentPiece == "" {
		return nil, sdkerrors.NewValidationError("missing_content_fields",
			"content tracking needs ContentName and ContentPiece")
	}
	p.CustomAction = true
	return c.Track(ctx, p)
}

// TrackBulk submits a batch of tracking requests as one POST. Each item is
// encoded independently into its own query-string fragment; the batch
// preserves input order and fails or succeeds as a whole. The configured
// token auth, if any, is included in the envelope.
func (c *Client) TrackBulk(ctx context.Context, batch []Params) (*http.Response, error) {
	if len(batch) == 0 {
		return nil, sdkerrors.NewValidationError("empty_batch", "bulk tracking needs at least one request")
	}

	fragments := lo.Map(batch, func(p Params, _ int) string {
		return "?" + encodePairs(c.basePairs(p))
	})

	payload, err := json.Marshal(bulkBody{Requests: fragments, TokenAuth: c.tokenAuth})
	if err != nil {
		return nil, sdkerrors.NewValidationError("invalid_request", "cannot encode bulk body").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.trackerURL, bytes.NewReader(payload))
	if err != nil {
		return nil, sdkerrors.NewValidationError("invalid_request", "cannot build bulk request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.dispatch(req, Hit{Method: http.MethodPost, URL: c.trackerURL, Fragments: fragments})
}

// dispatch performs the network call and applies the shared delivery
// contract: transport failures and non-2xx statuses become delivery errors
// (returned and broadcast), successes are returned with the body consumed.
func (c *Client) dispatch(req *http.Request, hit Hit) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(req.Context(), err, "tracking request failed", "method", hit.Method)
		c.emitHit(hit)
		c.emitDeliveryError(DeliveryError{Message: err.Error(), Err: err})
		return nil, sdkerrors.NewDeliveryError(0, "tracking request failed").WithCause(err)
	}

	// The endpoint's body is a pixel or empty; drain it so the connection
	// can be reused, and close it on the caller's behalf.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	hit.StatusCode = resp.StatusCode
	c.emitHit(hit)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn(req.Context(), nil, "tracking request rejected",
			"method", hit.Method, "status", resp.StatusCode)
		derr := sdkerrors.NewDeliveryError(resp.StatusCode, "tracking request rejected")
		c.emitDeliveryError(DeliveryError{StatusCode: resp.StatusCode, Message: derr.Message, Err: derr})
		return nil, derr
	}

	c.logger.Debug(req.Context(), "tracking request delivered",
		"method", hit.Method, "status", resp.StatusCode)
	return resp, nil
}

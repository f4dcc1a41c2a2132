package lastfm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// DefaultLimit is the result-size limit used when a command doesn't specify
// one.
const DefaultLimit = 10

// Method is a Last.fm API operation.
type Method string

const (
	UserInfo     Method = "user.getInfo"
	RecentTracks Method = "user.getRecentTracks"
	TopArtists   Method = "user.getTopArtists"
	TopAlbums    Method = "user.getTopAlbums"
	TopTracks    Method = "user.getTopTracks"
	TrackInfo    Method = "track.getInfo"
)

// subjectParam maps each method to the query parameter carrying the Last.fm
// username. track.getInfo deviates from the rest of the API: its username
// parameter is called "username", while "artist" and "track" identify the
// subject track.
var subjectParam = map[Method]string{
	UserInfo:     "user",
	RecentTracks: "user",
	TopArtists:   "user",
	TopAlbums:    "user",
	TopTracks:    "user",
	TrackInfo:    "username",
}

// Query describes a single API request. User is required for all methods,
// Artist and Track only for [TrackInfo]. A Limit of 0 leaves the result size
// up to the service.
type Query struct {
	Method Method
	User   string
	Artist string
	Track  string
	Limit  int
}

// Client issues requests against the Last.fm REST API. The zero values of
// BaseURL and HTTP fall back to [DefaultBaseURL] and a timeout-bounded
// default client.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch performs a single API request and returns the parsed response
// document. A top-level error field in the response surfaces as a
// [*ServiceError]; unparsable bodies surface as [ErrMalformed]. No retries
// are attempted, a failed request errors immediately.
func (c *Client) Fetch(ctx context.Context, q Query) (gjson.Result, error) {
	param, ok := subjectParam[q.Method]
	if !ok {
		return gjson.Result{}, fmt.Errorf("unknown method %q", q.Method)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("api_key", c.APIKey)
	params.Set("method", string(q.Method))
	params.Set(param, q.User)
	if q.Artist != "" {
		params.Set("artist", q.Artist)
	}
	if q.Track != "" {
		params.Set("track", q.Track)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	log.Info("Fetching from last.fm", "method", q.Method, "user", q.User)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("could not reach last.fm: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		log.Warn("Request failed", "method", q.Method, "err", err)
		return gjson.Result{}, fmt.Errorf("could not reach last.fm: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("could not reach last.fm: %w", err)
	}

	if !gjson.ValidBytes(body) {
		// Error responses also arrive as JSON. A non-2xx status without one is
		// a transport-level failure.
		if resp.StatusCode != http.StatusOK {
			return gjson.Result{}, fmt.Errorf("could not reach last.fm: status %s", resp.Status)
		}

		log.Error("Unparsable response", "method", q.Method, "status", resp.Status)
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	doc := gjson.ParseBytes(body)
	if e := doc.Get("error"); e.Exists() {
		svcErr := &ServiceError{Code: int(e.Int()), Message: doc.Get("message").String()}
		log.Warn("Service error", "method", q.Method, "code", svcErr.Code, "msg", svcErr.Message)
		return gjson.Result{}, svcErr
	}

	if !doc.IsObject() {
		log.Error("Unexpected response shape", "method", q.Method)
		return gjson.Result{}, fmt.Errorf("%w: expected an object", ErrMalformed)
	}

	log.Debug("Fetch complete", "method", q.Method, "user", q.User)
	return doc, nil
}

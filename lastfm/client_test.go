package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{APIKey: "test-key", BaseURL: srv.URL, HTTP: srv.Client()}
}

func TestFetch_SubjectParam(t *testing.T) {
	cases := []struct {
		method Method
		param  string
	}{
		{UserInfo, "user"},
		{RecentTracks, "user"},
		{TopArtists, "user"},
		{TopAlbums, "user"},
		{TopTracks, "user"},
		{TrackInfo, "username"},
	}

	for _, c := range cases {
		t.Run(string(c.method), func(t *testing.T) {
			var query url.Values
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				w.Write([]byte(`{"ok":true}`))
			})

			_, err := client.Fetch(context.Background(), Query{Method: c.method, User: "alice"})
			require.NoError(t, err)

			assert.Equal(t, "alice", query.Get(c.param))
			assert.Equal(t, string(c.method), query.Get("method"))
			assert.Equal(t, "json", query.Get("format"))
			assert.Equal(t, "test-key", query.Get("api_key"))
		})
	}
}

func TestFetch_TrackParams(t *testing.T) {
	var query url.Values
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"track":{}}`))
	})

	q := Query{Method: TrackInfo, User: "alice", Artist: "Cocteau Twins", Track: "Cherry-coloured Funk"}
	_, err := client.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "alice", query.Get("username"))
	assert.Equal(t, "Cocteau Twins", query.Get("artist"))
	assert.Equal(t, "Cherry-coloured Funk", query.Get("track"))
}

func TestFetch_Limit(t *testing.T) {
	var query url.Values
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{}`))
	})

	_, err := client.Fetch(context.Background(), Query{Method: RecentTracks, User: "alice", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, "3", query.Get("limit"))

	_, err = client.Fetch(context.Background(), Query{Method: RecentTracks, User: "alice"})
	require.NoError(t, err)
	assert.False(t, query.Has("limit"), "zero limit must be left to the service")
}

func TestFetch_ServiceError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":6,"message":"User not found"}`))
	})

	_, err := client.Fetch(context.Background(), Query{Method: UserInfo, User: "nobody"})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 6, svcErr.Code)
	assert.Equal(t, "User not found", svcErr.Error())
}

func TestFetch_MalformedResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("certainly not json"))
	})

	_, err := client.Fetch(context.Background(), Query{Method: UserInfo, User: "alice"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := &Client{APIKey: "k", BaseURL: srv.URL, HTTP: srv.Client()}
	srv.Close()

	_, err := client.Fetch(context.Background(), Query{Method: UserInfo, User: "alice"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestFetch_NonOKWithoutBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Fetch(context.Background(), Query{Method: UserInfo, User: "alice"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "could not reach last.fm")
}

func TestFetch_UnknownMethod(t *testing.T) {
	client := &Client{APIKey: "k"}

	_, err := client.Fetch(context.Background(), Query{Method: "user.getNonsense", User: "alice"})
	assert.Error(t, err)
}

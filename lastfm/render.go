package lastfm

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

// View is a rendered response, ready to be placed into a message embed.
// Fields left empty are omitted from the embed.
type View struct {
	Author      string
	Title       string
	Description string
	Footer      string
	Thumbnail   string
}

// rule describes where a method's items live inside the response document
// and how a single item becomes a display line. Paths are gjson paths; the
// literal "#" and "@" in Last.fm's key names need escaping.
type rule struct {
	// Path to the homogeneous item list.
	list string
	// Path to the service-reported total, shown in the footer when present.
	total string
	// Formats one item, given its 0-based rank.
	line func(rank int, item gjson.Result) string
}

var rules = map[Method]rule{
	RecentTracks: {
		list:  "recenttracks.track",
		total: `recenttracks.\@attr.total`,
		line: func(rank int, item gjson.Result) string {
			return fmt.Sprintf(
				"`%s` **%s — %s**",
				ago(item.Get("date.uts")),
				strOr(item.Get(`artist.\#text`), "???"),
				strOr(item.Get("name"), "???"),
			)
		},
	},
	TopArtists: {
		list:  "topartists.artist",
		total: `topartists.\@attr.total`,
		line: func(rank int, item gjson.Result) string {
			return fmt.Sprintf(
				"`%2d.` **%s** (%s plays)",
				rank+1,
				strOr(item.Get("name"), "???"),
				strOr(item.Get("playcount"), "0"),
			)
		},
	},
	TopTracks: {
		list:  "toptracks.track",
		total: `toptracks.\@attr.total`,
		line: func(rank int, item gjson.Result) string {
			return fmt.Sprintf(
				"`%2d.` **%s — %s** (%s plays)",
				rank+1,
				strOr(item.Get("artist.name"), "???"),
				strOr(item.Get("name"), "???"),
				strOr(item.Get("playcount"), "0"),
			)
		},
	},
	TopAlbums: {
		list:  "topalbums.album",
		total: `topalbums.\@attr.total`,
		line: func(rank int, item gjson.Result) string {
			return fmt.Sprintf(
				"`%2d.` **%s — %s** (%s plays)",
				rank+1,
				strOr(item.Get("artist.name"), "???"),
				strOr(item.Get("name"), "???"),
				strOr(item.Get("playcount"), "0"),
			)
		},
	},
}

// RenderList renders the items of a list-shaped response into a [View], at
// most limit lines in service order. Items with missing fields degrade to
// placeholder text; only an absent or non-list item list fails the render
// (see [ErrListNotFound]).
func RenderList(doc gjson.Result, method Method, limit int) (*View, error) {
	r, ok := rules[method]
	if !ok {
		return nil, fmt.Errorf("no list rule for method %q", method)
	}

	items := doc.Get(r.list)
	if !items.Exists() || !items.IsArray() {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, r.list)
	}

	all := items.Array()
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	lines := make([]string, 0, len(all))
	for i, item := range all {
		lines = append(lines, r.line(i, item))
	}

	view := &View{Description: strings.Join(lines, "\n")}
	if len(all) > 0 {
		view.Thumbnail = largestImage(all[0].Get("image"))
	}
	if total := doc.Get(r.total); total.Exists() && total.String() != "" {
		view.Footer = fmt.Sprintf("%s total", total.String())
	}

	return view, nil
}

// RenderProfile renders a user.getInfo response. Missing fields degrade to
// placeholders, never a failed render.
func RenderProfile(doc gjson.Result, username string) *View {
	user := doc.Get("user")

	counts := fmt.Sprintf(
		"**%s** scrobbles\n**%s** tracks\n**%s** albums\n**%s** artists",
		strOr(user.Get("playcount"), "0"),
		strOr(user.Get("track_count"), "0"),
		strOr(user.Get("album_count"), "0"),
		strOr(user.Get("artist_count"), "0"),
	)

	registered := "N/A"
	if uts := user.Get("registered.unixtime").Int(); uts > 0 {
		registered = humanize.Time(time.Unix(uts, 0))
	}

	return &View{
		Title:       strOr(user.Get("name"), username),
		Description: counts,
		Footer:      fmt.Sprintf("registered %s · %s", registered, strOr(user.Get("country"), "N/A")),
		Thumbnail:   largestImage(user.Get("image")),
	}
}

// RenderTrack renders a track.getInfo response as a now-playing view. A
// duration of 0 means the service doesn't know the track length, so the
// duration suffix is omitted rather than shown as 0:00.
func RenderTrack(doc gjson.Result, username string) *View {
	track := doc.Get("track")

	title := fmt.Sprintf(
		"%s — %s",
		strOr(track.Get("artist.name"), "???"),
		strOr(track.Get("name"), "???"),
	)
	if ms := track.Get("duration").Int(); ms > 0 {
		title += fmt.Sprintf(" `[%d:%02d]`", ms/60000, (ms%60000)/1000)
	}

	description := fmt.Sprintf(
		":cd: %s\n> %s plays",
		strOr(track.Get("album.title"), "N/A"),
		strOr(track.Get("userplaycount"), "0"),
	)

	var tags []string
	for _, tag := range track.Get("toptags.tag").Array() {
		if name := tag.Get("name").String(); name != "" {
			tags = append(tags, name)
		}
	}

	return &View{
		Author:      fmt.Sprintf("%s is now playing...", username),
		Title:       title,
		Description: description,
		Footer:      strings.Join(tags, ", "),
		Thumbnail:   largestImage(track.Get("album.image")),
	}
}

// ago converts an epoch-seconds scrobble timestamp into a relative phrase.
// Last.fm reports 0 for a track that is playing right now, not epoch start.
func ago(uts gjson.Result) string {
	ts := uts.Int()
	if ts == 0 {
		return "now"
	}

	return humanize.Time(time.Unix(ts, 0))
}

// largestImage picks the largest entry from a size-ordered image list,
// defaulting to an empty reference.
func largestImage(images gjson.Result) string {
	if !images.IsArray() {
		return ""
	}

	sizes := images.Array()
	for i := len(sizes) - 1; i >= 0; i-- {
		if url := sizes[i].Get(`\#text`).String(); url != "" {
			return url
		}
	}

	return ""
}

// strOr returns the field's string value, or fallback when the field is
// absent or empty.
func strOr(field gjson.Result, fallback string) string {
	if s := field.String(); s != "" {
		return s
	}

	return fallback
}

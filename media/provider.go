package media

import (
	"net/url"
	"regexp"
	"strings"

	"richedit/document"
)

var (
	youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	vimeoID   = regexp.MustCompile(`^\d+$`)
)

// VideoURL maps a video URL to its embeddable form. YouTube watch, short,
// shorts and embed links and Vimeo numeric links resolve to the provider's
// player; anything else is returned unchanged as a direct media URL.
func VideoURL(raw string) (string, document.Provider) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw, document.ProviderNone
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	switch host {
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		if id := u.Query().Get("v"); youtubeID.MatchString(id) {
			return "https://www.youtube.com/embed/" + id, document.ProviderYouTube
		}
		if len(segs) >= 2 && (segs[0] == "shorts" || segs[0] == "embed" || segs[0] == "live" || segs[0] == "v") && youtubeID.MatchString(segs[1]) {
			return "https://www.youtube.com/embed/" + segs[1], document.ProviderYouTube
		}
	case "youtu.be":
		if len(segs) >= 1 && youtubeID.MatchString(segs[0]) {
			return "https://www.youtube.com/embed/" + segs[0], document.ProviderYouTube
		}
	case "vimeo.com", "player.vimeo.com":
		// The numeric ID is the last numeric segment: /123, /channels/x/123,
		// /video/123.
		for i := len(segs) - 1; i >= 0; i-- {
			if vimeoID.MatchString(segs[i]) {
				return "https://player.vimeo.com/video/" + segs[i], document.ProviderVimeo
			}
		}
	}
	return raw, document.ProviderNone
}

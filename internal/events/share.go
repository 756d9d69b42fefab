package events

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ShareLink is the public registration entry point for one event. Deriving
// it is deterministic and needs no store round trip.
type ShareLink struct {
	EventID string `json:"event_id"`
	URL     string `json:"url"`
}

// NewShareLink builds {base}/register/{eventId} from the configured public
// base URL.
func NewShareLink(baseURL, eventID string) ShareLink {
	return ShareLink{
		EventID: eventID,
		URL:     fmt.Sprintf("%s/register/%s", strings.TrimRight(baseURL, "/"), eventID),
	}
}

// QR renders the link as a scannable PNG.
func (l ShareLink) QR() ([]byte, error) {
	return qrcode.Encode(l.URL, qrcode.Medium, 256)
}

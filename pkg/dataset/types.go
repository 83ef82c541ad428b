package dataset

import (
	"time"

	"github.com/paulmach/orb"
)

type CountryTrafficRecord struct {
	CountryCode string  `json:"country_code"`
	TotalBytes  float64 `json:"totalbytes"`
	AvgMbps     float64 `json:"avgmbps"`
}

type AsnRecord struct {
	ASName  string  `json:"asname"`
	AvgMbps float64 `json:"avgmbps"`
}

type PlayerSample struct {
	Time    time.Time
	Players int64
}

type GeoFeature struct {
	ID       string
	Name     string
	Geometry orb.Geometry
}

// Traffic is keyed by alpha-3 country code.
type Traffic map[string]CountryTrafficRecord

// ASNs is keyed by alpha-3 country code. Slices keep file order.
type ASNs map[string][]AsnRecord

// Bundle is one consistent generation of every dataset the renderers use.
type Bundle struct {
	World    []GeoFeature
	Traffic  Traffic
	ASNs     ASNs
	Players  []PlayerSample
	LoadedAt time.Time

	// PlayersErr is set when the player series could not be loaded. The
	// map datasets stay usable and only the chart is skipped.
	PlayersErr error
}

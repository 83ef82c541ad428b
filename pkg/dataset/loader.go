package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

// TimeLayout is the timestamp format of the player CSV.
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrNoSamples  = errors.New("no player samples")
	ErrUnordered  = errors.New("player samples are not strictly increasing in time")
	ErrNoFeatures = errors.New("world geometry has no features")
)

type Paths struct {
	World   string
	Traffic string
	ASNs    string
	Players string
}

// LoadBundle reads all datasets concurrently. Map datasets are required; a
// player series failure is recorded on the bundle instead of failing it.
func LoadBundle(ctx context.Context, p Paths) (*Bundle, error) {
	b := &Bundle{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		b.World, err = LoadWorld(p.World)
		return err
	})
	g.Go(func() error {
		var err error
		b.Traffic, err = LoadTraffic(p.Traffic)
		return err
	})
	g.Go(func() error {
		var err error
		b.ASNs, err = LoadASNs(p.ASNs)
		return err
	})
	g.Go(func() error {
		b.Players, b.PlayersErr = LoadPlayers(p.Players)
		if b.PlayersErr != nil {
			slog.Error("Player series unavailable, chart disabled", "path", p.Players, "error", b.PlayersErr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.LoadedAt = time.Now()
	slog.Debug("Datasets loaded",
		"features", len(b.World),
		"countries", len(b.Traffic),
		"asn_countries", len(b.ASNs),
		"samples", len(b.Players))
	return b, nil
}

func LoadWorld(path string) ([]GeoFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world geometry: %w", err)
	}
	return ParseWorld(data)
}

func ParseWorld(data []byte) ([]GeoFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse world geometry: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoFeatures
	}

	features := make([]GeoFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		features = append(features, GeoFeature{
			ID:       featureID(f),
			Name:     f.Properties.MustString("name", ""),
			Geometry: f.Geometry,
		})
	}
	return features, nil
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		return strings.ToUpper(id)
	case nil:
		return strings.ToUpper(f.Properties.MustString("iso_a3", ""))
	default:
		return fmt.Sprint(id)
	}
}

func LoadTraffic(path string) (Traffic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open traffic data: %w", err)
	}
	defer f.Close()
	return ParseTraffic(f)
}

func ParseTraffic(r io.Reader) (Traffic, error) {
	var raw map[string]CountryTrafficRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode traffic data: %w", err)
	}

	traffic := make(Traffic, len(raw))
	for code, rec := range raw {
		code = strings.ToUpper(code)
		rec.CountryCode = code
		traffic[code] = rec
	}
	return traffic, nil
}

func LoadASNs(path string) (ASNs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asn data: %w", err)
	}
	defer f.Close()
	return ParseASNs(f)
}

func ParseASNs(r io.Reader) (ASNs, error) {
	var raw map[string][]AsnRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode asn data: %w", err)
	}

	asns := make(ASNs, len(raw))
	for code, list := range raw {
		asns[strings.ToUpper(code)] = list
	}
	return asns, nil
}

func LoadPlayers(path string) ([]PlayerSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open player series: %w", err)
	}
	defer f.Close()
	return ParsePlayers(f)
}

// ParsePlayers reads time,players rows. The first row is skipped only when
// it is a header: its time column reads "time" or its players column is
// not a number.
func ParsePlayers(r io.Reader) ([]PlayerSample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var samples []PlayerSample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read player series: %w", err)
		}

		if line == 1 && isHeader(rec) {
			continue
		}

		ts, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(rec[0]), time.Local)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid time %q: %w", line, rec[0], err)
		}
		players, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid players %q: %w", line, rec[1], err)
		}

		if n := len(samples); n > 0 && !ts.After(samples[n-1].Time) {
			return nil, fmt.Errorf("line %d: %w", line, ErrUnordered)
		}
		samples = append(samples, PlayerSample{Time: ts, Players: players})
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

func isHeader(rec []string) bool {
	if strings.EqualFold(strings.TrimSpace(rec[0]), "time") {
		return true
	}
	_, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
	return err != nil
}

// Peak returns the first sample holding the maximum player count.
func Peak(samples []PlayerSample) (PlayerSample, bool) {
	if len(samples) == 0 {
		return PlayerSample{}, false
	}
	peak := samples[0]
	for _, s := range samples[1:] {
		if s.Players > peak.Players {
			peak = s
		}
	}
	return peak, true
}

// Extent returns the min and max over values, or zeros when empty.
func Extent(values []float64) (min, max float64) {
	for i, v := range values {
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}
	return min, max
}

// TotalBytes returns the per-country total byte counts.
func (t Traffic) TotalBytes() []float64 {
	out := make([]float64, 0, len(t))
	for _, rec := range t {
		out = append(out, rec.TotalBytes)
	}
	return out
}

func (t Traffic) AvgMbps() []float64 {
	out := make([]float64, 0, len(t))
	for _, rec := range t {
		out = append(out, rec.AvgMbps)
	}
	return out
}

func (t Traffic) SumTotalBytes() float64 {
	var sum float64
	for _, rec := range t {
		sum += rec.TotalBytes
	}
	return sum
}

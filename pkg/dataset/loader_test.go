package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const worldJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "CHN", "properties": {"name": "China"},
     "geometry": {"type": "Polygon", "coordinates": [[[100,20],[120,20],[120,40],[100,40],[100,20]]]}},
    {"type": "Feature", "properties": {"name": "Nowhere", "iso_a3": "nwh"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`

const trafficJSON = `{"CHN": {"totalbytes": 3000, "avgmbps": 40.5}, "usa": {"totalbytes": 1000, "avgmbps": 120}}`

const asnJSON = `{"CHN": [{"asname": "China Telecom", "avgmbps": 33.1}, {"asname": "China Mobile", "avgmbps": 45.2}]}`

const playersCSV = `time,players
2024-12-13 00:00:00,23333767
2024-12-13 00:10:00,23296437
2024-12-13 00:20:00,24175694
2024-12-13 00:30:00,23339061
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseWorld(t *testing.T) {
	features, err := ParseWorld([]byte(worldJSON))
	if err != nil {
		t.Fatalf("ParseWorld failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features want 2", len(features))
	}
	if features[0].ID != "CHN" || features[0].Name != "China" {
		t.Fatalf("unexpected first feature %+v", features[0])
	}
	if features[1].ID != "NWH" {
		t.Fatalf("expected iso_a3 fallback id, got %q", features[1].ID)
	}
}

func TestParseWorldEmpty(t *testing.T) {
	_, err := ParseWorld([]byte(`{"type":"FeatureCollection","features":[]}`))
	if !errors.Is(err, ErrNoFeatures) {
		t.Fatalf("expected ErrNoFeatures, got %v", err)
	}
}

func TestParseTraffic(t *testing.T) {
	traffic, err := ParseTraffic(strings.NewReader(trafficJSON))
	if err != nil {
		t.Fatalf("ParseTraffic failed: %v", err)
	}
	rec, ok := traffic["USA"]
	if !ok {
		t.Fatalf("codes should be upper-cased: %v", traffic)
	}
	if rec.CountryCode != "USA" || rec.TotalBytes != 1000 || rec.AvgMbps != 120 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if sum := traffic.SumTotalBytes(); sum != 4000 {
		t.Fatalf("SumTotalBytes = %v want 4000", sum)
	}
	if min, max := Extent(traffic.AvgMbps()); min != 40.5 || max != 120 {
		t.Fatalf("avg extent = [%v,%v]", min, max)
	}
}

func TestParseASNs(t *testing.T) {
	asns, err := ParseASNs(strings.NewReader(asnJSON))
	if err != nil {
		t.Fatalf("ParseASNs failed: %v", err)
	}
	if got := len(asns["CHN"]); got != 2 {
		t.Fatalf("got %d CHN asns want 2", got)
	}
	if asns["CHN"][0].ASName != "China Telecom" {
		t.Fatalf("file order not kept: %+v", asns["CHN"])
	}
}

func TestParsePlayers(t *testing.T) {
	samples, err := ParsePlayers(strings.NewReader(playersCSV))
	if err != nil {
		t.Fatalf("ParsePlayers failed: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("got %d samples want 4", len(samples))
	}
	peak, ok := Peak(samples)
	if !ok || peak.Players != 24175694 {
		t.Fatalf("peak = %+v", peak)
	}
	if got := peak.Time.Format(TimeLayout); got != "2024-12-13 00:20:00" {
		t.Fatalf("peak time = %s", got)
	}
}

func TestParsePlayersErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrNoSamples},
		{"header only", "time,players\n", ErrNoSamples},
		{"unordered", "2024-12-13 00:10:00,1\n2024-12-13 00:00:00,2\n", ErrUnordered},
		{"duplicate time", "2024-12-13 00:10:00,1\n2024-12-13 00:10:00,2\n", ErrUnordered},
	}
	for _, c := range cases {
		_, err := ParsePlayers(strings.NewReader(c.in))
		if !errors.Is(err, c.want) {
			t.Errorf("%s: got %v want %v", c.name, err, c.want)
		}
	}

	if _, err := ParsePlayers(strings.NewReader("2024-12-13 00:10:00,lots\n")); err == nil {
		t.Error("expected error for non-numeric player count")
	}
	if _, err := ParsePlayers(strings.NewReader("2024-12-13 00:10:00,1\nyesterday,2\n")); err == nil {
		t.Error("expected error for bad timestamp after the first row")
	}

	in := "2024/12/13 00:00:00,99999999\n2024-12-13 00:10:00,1\n2024-12-13 00:20:00,2\n"
	samples, err := ParsePlayers(strings.NewReader(in))
	if err == nil {
		t.Fatalf("malformed first row was dropped: got %d samples", len(samples))
	}
	if !strings.Contains(err.Error(), "line 1: invalid time") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestParsePlayersHeaders(t *testing.T) {
	for _, in := range []string{
		"time,players\n2024-12-13 00:00:00,5\n",
		"Time , count\n2024-12-13 00:00:00,5\n",
		"when,players\n2024-12-13 00:00:00,5\n",
	} {
		samples, err := ParsePlayers(strings.NewReader(in))
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if len(samples) != 1 || samples[0].Players != 5 {
			t.Errorf("%q: got %+v", in, samples)
		}
	}
}

func TestPeakEmpty(t *testing.T) {
	if _, ok := Peak(nil); ok {
		t.Fatal("Peak of no samples should report false")
	}
}

func TestLoadBundle(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		World:   writeFile(t, dir, "world.json", worldJSON),
		Traffic: writeFile(t, dir, "traffic.json", trafficJSON),
		ASNs:    writeFile(t, dir, "asns.json", asnJSON),
		Players: writeFile(t, dir, "players.csv", playersCSV),
	}

	b, err := LoadBundle(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if len(b.World) != 2 || len(b.Traffic) != 2 || len(b.ASNs) != 1 || len(b.Players) != 4 {
		t.Fatalf("unexpected bundle sizes: %d %d %d %d", len(b.World), len(b.Traffic), len(b.ASNs), len(b.Players))
	}
	if b.PlayersErr != nil || b.LoadedAt.IsZero() {
		t.Fatalf("unexpected bundle state: err=%v loadedAt=%v", b.PlayersErr, b.LoadedAt)
	}
}

func TestLoadBundlePlayersOptional(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		World:   writeFile(t, dir, "world.json", worldJSON),
		Traffic: writeFile(t, dir, "traffic.json", trafficJSON),
		ASNs:    writeFile(t, dir, "asns.json", asnJSON),
		Players: writeFile(t, dir, "players.csv", "time,players\n"),
	}

	b, err := LoadBundle(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if !errors.Is(b.PlayersErr, ErrNoSamples) {
		t.Fatalf("PlayersErr = %v want ErrNoSamples", b.PlayersErr)
	}
}

func TestLoadBundleMissingMapData(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		World:   filepath.Join(dir, "missing.json"),
		Traffic: writeFile(t, dir, "traffic.json", trafficJSON),
		ASNs:    writeFile(t, dir, "asns.json", asnJSON),
		Players: writeFile(t, dir, "players.csv", playersCSV),
	}
	if _, err := LoadBundle(context.Background(), paths); err == nil {
		t.Fatal("expected error when world geometry is missing")
	}
}

package choropleth

import (
	"fmt"
	"sort"

	"github.com/rxtx-hosting/steamviz/pkg/dataset"
)

// TopISPCount caps the ISP table of the detail panel.
const TopISPCount = 5

type Tooltip struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Metric  string `json:"metric"`
	Value   string `json:"value"`
	HasData bool   `json:"has_data"`
}

type ISPRow struct {
	Name    string  `json:"name"`
	AvgMbps float64 `json:"avg_mbps"`
	Display string  `json:"display"`
}

// Detail is the click panel of one country. Formatted fields are empty when
// HasTraffic is false; ISPs is empty when HasISPs is false.
type Detail struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	HasTraffic  bool     `json:"has_traffic"`
	TotalBytes  string   `json:"total_bytes,omitempty"`
	AvgMbps     string   `json:"avg_mbps,omitempty"`
	GlobalShare string   `json:"global_share,omitempty"`
	HasISPs     bool     `json:"has_isps"`
	ISPs        []ISPRow `json:"isps"`
	Message     string   `json:"message,omitempty"`
}

// Name returns the localized display name of a country.
func (m *Map) Name(code string) string {
	return m.locale.CountryName(code, m.names[code])
}

// Tooltip describes the hover text for code under the active metric.
func (m *Map) Tooltip(code string) Tooltip {
	return m.tooltip(m.Active(), code)
}

func (m *Map) tooltip(metric Metric, code string) Tooltip {
	tip := Tooltip{
		Code:   code,
		Name:   m.Name(code),
		Metric: metric.Label(m.labels),
		Value:  m.labels.NoData,
	}
	if rec, ok := m.traffic[code]; ok {
		if v := metric.Value(rec); v != 0 {
			tip.Value = metric.Format(v)
			tip.HasData = true
		}
	}
	return tip
}

func (m *Map) Detail(code string) Detail {
	d := Detail{
		Code: code,
		Name: m.Name(code),
		ISPs: []ISPRow{},
	}

	if rec, ok := m.traffic[code]; ok {
		d.HasTraffic = true
		d.TotalBytes = TotalBytes.Format(rec.TotalBytes)
		d.AvgMbps = AvgMbps.Format(rec.AvgMbps)
		d.GlobalShare = GlobalShare(rec.TotalBytes, m.sumBytes)
	} else {
		d.Message = m.labels.NoDataAvailable
	}

	if list, ok := m.asns[code]; ok && len(list) > 0 {
		d.HasISPs = true
		for _, a := range TopISPs(list, TopISPCount) {
			d.ISPs = append(d.ISPs, ISPRow{
				Name:    a.ASName,
				AvgMbps: a.AvgMbps,
				Display: fmt.Sprintf("%.2f", a.AvgMbps),
			})
		}
	}
	return d
}

// GlobalShare formats bytes as a percentage of total with one decimal.
func GlobalShare(bytes, total float64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", bytes/total*100)
}

// TopISPs returns at most n records ordered by descending AvgMbps. Ties keep
// file order and the input is not modified.
func TopISPs(list []dataset.AsnRecord, n int) []dataset.AsnRecord {
	sorted := append([]dataset.AsnRecord(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgMbps > sorted[j].AvgMbps
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

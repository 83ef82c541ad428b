package locale

import (
	"fmt"
	"strings"

	"github.com/biter777/countries"
)

// Locale selects the language of country names and UI labels.
type Locale string

const (
	Chinese Locale = "zh"
	English Locale = "en"
)

func Parse(s string) (Locale, error) {
	switch l := Locale(strings.ToLower(strings.TrimSpace(s))); l {
	case Chinese, English:
		return l, nil
	case "":
		return Chinese, nil
	default:
		return "", fmt.Errorf("unknown locale %q", s)
	}
}

// CountryName resolves a display name for an alpha-3 code. fallback is the
// name carried by the map geometry and is preferred over the generic
// English registry name.
func (l Locale) CountryName(code, fallback string) string {
	code = strings.ToUpper(code)
	if l == Chinese {
		if name, ok := chineseNames[code]; ok {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	if c := countries.ByName(code); c != countries.Unknown {
		return c.String()
	}
	return code
}

// Labels holds every user facing string the page and panels render.
type Labels struct {
	TotalBytes      string
	AvgMbps         string
	TotalBytesPanel string
	AvgMbpsPanel    string
	GlobalShare     string
	TopISPs         string
	TopISPsEmpty    string
	ISPColumn       string
	ISPSpeedColumn  string
	NoData          string
	NoDataAvailable string
	Peak            string
	Time            string
	Players         string
	ShowTotalBytes  string
	ShowAvgMbps     string
}

var labels = map[Locale]Labels{
	Chinese: {
		TotalBytes:      "Total Bytes",
		AvgMbps:         "Avg Mbps",
		TotalBytesPanel: "总计字节",
		AvgMbpsPanel:    "平均下载速度",
		GlobalShare:     "Steam 全球流量百分比",
		TopISPs:         "互联网服务提供商性能 Top 5",
		TopISPsEmpty:    "Top ASNs",
		ISPColumn:       "运营商",
		ISPSpeedColumn:  "平均下载速度 (Mbps)",
		NoData:          "No data",
		NoDataAvailable: "No data available",
		Peak:            "峰值",
		Time:            "时间",
		Players:         "玩家数",
		ShowTotalBytes:  "总流量",
		ShowAvgMbps:     "平均速度",
	},
	English: {
		TotalBytes:      "Total Bytes",
		AvgMbps:         "Avg Mbps",
		TotalBytesPanel: "Total bytes",
		AvgMbpsPanel:    "Average download speed",
		GlobalShare:     "Share of global Steam traffic",
		TopISPs:         "Top 5 ISPs by download speed",
		TopISPsEmpty:    "Top ASNs",
		ISPColumn:       "Provider",
		ISPSpeedColumn:  "Avg download speed (Mbps)",
		NoData:          "No data",
		NoDataAvailable: "No data available",
		Peak:            "Peak",
		Time:            "Time",
		Players:         "Players",
		ShowTotalBytes:  "Total traffic",
		ShowAvgMbps:     "Average speed",
	},
}

// Labels returns the label set, defaulting to Chinese for unknown locales.
func (l Locale) Labels() Labels {
	if set, ok := labels[l]; ok {
		return set
	}
	return labels[Chinese]
}

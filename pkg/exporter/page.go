package exporter

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rxtx-hosting/steamviz/pkg/choropleth"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
)

type pageData struct {
	Labels      locale.Labels
	Metric      choropleth.Metric
	MapSVG      template.HTML
	ChartSVG    template.HTML
	ChartErr    string
	Detail      *choropleth.Detail
	ZoomIn      string
	ZoomOut     string
	ToggleTotal string
	ToggleAvg   string
}

func (a *APIServer) handlePage(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	z := parseZoom(c)
	data := pageData{
		Labels:  a.labels,
		Metric:  v.world.Active(),
		ZoomIn:  "/?" + zoomQuery(z.ScaleBy(choropleth.ZoomInFactor)).Encode(),
		ZoomOut: "/?" + zoomQuery(z.ScaleBy(choropleth.ZoomOutFactor)).Encode(),
	}

	q := zoomQuery(z)
	if code := strings.ToUpper(c.Query("country")); code != "" {
		d := v.world.Detail(code)
		data.Detail = &d
		q.Set("country", code)
	}
	data.ToggleTotal = "/toggle/" + string(choropleth.TotalBytes) + "?" + q.Encode()
	data.ToggleAvg = "/toggle/" + string(choropleth.AvgMbps) + "?" + q.Encode()

	var buf bytes.Buffer
	if err := v.world.WriteSVG(&buf, z, pageLink(z)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data.MapSVG = template.HTML(stripXMLHeader(buf.String()))

	if v.plot != nil {
		buf.Reset()
		if err := v.plot.WriteSVG(&buf, a.labels); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		data.ChartSVG = template.HTML(stripXMLHeader(buf.String()))
	} else {
		data.ChartErr = v.plotErr.Error()
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// stripXMLHeader drops the prolog svgo writes so the SVG can sit inline.
func stripXMLHeader(s string) string {
	if strings.HasPrefix(s, "<?xml") {
		if i := strings.Index(s, "?>"); i >= 0 {
			s = strings.TrimLeft(s[i+2:], "\r\n")
		}
	}
	return s
}

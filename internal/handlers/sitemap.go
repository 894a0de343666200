package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/config"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/models"
)

// Sitemap cache
var (
	sitemapCache     []byte
	sitemapRefreshed time.Time
	sitemapMutex     sync.RWMutex
	sitemapCacheTTL  = 6 * time.Hour
)

// SitemapEntry represents a single URL entry in the sitemap
type SitemapEntry struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	LastMod    string   `xml:"lastmod,omitempty"`
	ChangeFreq string   `xml:"changefreq,omitempty"`
	Priority   string   `xml:"priority,omitempty"`
}

// URLSet is the root element of the sitemap
type URLSet struct {
	XMLName xml.Name       `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []SitemapEntry `xml:"url"`
}

// GenerateSitemap lists the page plus deep links for every published
// event (release, upcoming, archived). Proposed and backlog items are
// not deep-linkable.
func (h *Handler) GenerateSitemap(c *gin.Context) {
	sitemapMutex.RLock()
	if sitemapCache != nil && time.Since(sitemapRefreshed) < sitemapCacheTTL {
		c.Header("Content-Type", "application/xml")
		c.Writer.Write(sitemapCache)
		sitemapMutex.RUnlock()
		return
	}
	sitemapMutex.RUnlock()

	baseURL := config.AppConfig.PublicURL

	groups, err := h.Loader.Load(c.Request.Context())
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}

	urls := []SitemapEntry{{
		Loc:        baseURL + "/",
		ChangeFreq: "daily",
		Priority:   "0.8",
	}}

	published := make([]models.Event, 0, len(groups.Release)+len(groups.Upcoming)+len(groups.Archived))
	published = append(published, groups.Upcoming...)
	published = append(published, groups.Release...)
	published = append(published, groups.Archived...)
	for _, ev := range published {
		entry := SitemapEntry{
			Loc:        fmt.Sprintf("%s/event/%s", baseURL, ev.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		}
		if ev.Date != nil {
			entry.LastMod = ev.Date.Format("2006-01-02")
		}
		urls = append(urls, entry)
	}

	output, err := xml.MarshalIndent(URLSet{URLs: urls}, "", "  ")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	finalXML := []byte(xml.Header + string(output))

	sitemapMutex.Lock()
	sitemapCache = finalXML
	sitemapRefreshed = time.Now()
	sitemapMutex.Unlock()

	c.Header("Content-Type", "application/xml")
	c.Writer.Write(finalXML)
}

// GenerateRobotsTXT returns the robots.txt file
func GenerateRobotsTXT(c *gin.Context) {
	robots := fmt.Sprintf(`User-agent: *
Allow: /
Disallow: /api

Sitemap: %s/sitemap.xml`, config.AppConfig.PublicURL)

	c.Header("Content-Type", "text/plain")
	c.String(http.StatusOK, robots)
}

package api

import (
	"bytes"         // Body buffering
	"encoding/json" // JSON-LD decoding
	"io"            // Body reading
	"net/http"      // HTTP client and status codes
	"net/url"       // Relative image URL resolution
	"regexp"        // Price fallback patterns
	"strconv"       // Price parsing
	"strings"       // String manipulation
	"time"          // Fetch timeout

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/net/html"      // HTML tokenizer for metadata extraction
)

// browserUserAgent keeps shops from serving a bot-only page
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxPreviewBody bounds how much of a page is read for metadata
const maxPreviewBody = 2 << 20

// Price fallback patterns for pages without usable structured data
var (
	pricePattern         = regexp.MustCompile(`"price"\s*:\s*["']?([0-9\s.,]+)["']?`)
	currencyPricePattern = regexp.MustCompile(`content=["']([0-9\s.,]+)\s*(?:₽|RUB)["']`)
)

// linkPreview is the best-effort metadata triple for prefilling a gift form.
// All fields may be null; the endpoint never fails.
type linkPreview struct {
	Title *string  `json:"title"` // Page or product title
	Image *string  `json:"image"` // Product image URL
	Price *float64 `json:"price"` // Product price
}

// ParseURLHandler fetches a URL and extracts title/image/price for the gift
// form. Any fetch or parse problem degrades to an all-null result.
func ParseURLHandler() gin.HandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second} // Fetch timeout
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Query("url"))
		if raw == "" {
			c.JSON(http.StatusOK, linkPreview{}) // Nothing to fetch
			return
		}
		// Default to https when no scheme was given
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			raw = "https://" + raw
		}
		req, err := http.NewRequest(http.MethodGet, raw, nil)
		if err != nil {
			c.JSON(http.StatusOK, linkPreview{}) // Unusable URL, degrade silently
			return
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
		resp, err := client.Do(req)
		if err != nil {
			logrus.WithFields(logrus.Fields{"url": raw, "error": err.Error()}).Warn("parse-url fetch failed")
			c.JSON(http.StatusOK, linkPreview{}) // Upstream failure degrades to all-null
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			c.JSON(http.StatusOK, linkPreview{})
			return
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBody))
		if err != nil {
			c.JSON(http.StatusOK, linkPreview{})
			return
		}
		// Redirects may have moved us; resolve relative images against the final URL
		c.JSON(http.StatusOK, extractPreview(body, resp.Request.URL))
	}
}

// extractPreview pulls the metadata triple out of a fetched page
func extractPreview(page []byte, base *url.URL) linkPreview {
	var preview linkPreview
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return preview
	}

	var jsonLD []string  // Raw application/ld+json blocks
	var ogTitle string   // First og:title / twitter:title
	var ogImage string   // First og:image / twitter:image
	var docTitle string  // <title> fallback
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				for _, a := range n.Attr {
					if a.Key == "type" && strings.EqualFold(a.Val, "application/ld+json") && n.FirstChild != nil {
						jsonLD = append(jsonLD, n.FirstChild.Data)
					}
				}
			case "meta":
				var prop, content string
				for _, a := range n.Attr {
					switch a.Key {
					case "property", "name":
						prop = a.Val
					case "content":
						content = a.Val
					}
				}
				switch prop {
				case "og:title", "twitter:title":
					if ogTitle == "" && strings.TrimSpace(content) != "" {
						ogTitle = strings.TrimSpace(content)
					}
				case "og:image", "twitter:image":
					if ogImage == "" && strings.TrimSpace(content) != "" {
						ogImage = strings.TrimSpace(content)
					}
				}
			case "title":
				if docTitle == "" && n.FirstChild != nil {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	// 1) Structured data (Schema.org Product / Offer / AggregateOffer)
	for _, raw := range jsonLD {
		var data any
		// Some sites emit broken JSON blocks; skip them
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
			continue
		}
		switch v := data.(type) {
		case map[string]any:
			scanLDObject(v, &preview)
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok {
					scanLDObject(obj, &preview)
				}
			}
		}
	}

	// 2) og/twitter title beats structured data, <title> is the last resort
	title := ogTitle
	if title == "" && preview.Title != nil {
		title = *preview.Title
	}
	if title == "" {
		title = docTitle
	}
	if title = cleanTitle(title); title != "" {
		preview.Title = &title
	} else {
		preview.Title = nil
	}

	// 3) og/twitter image beats structured data
	image := ogImage
	if image == "" && preview.Image != nil {
		image = *preview.Image
	}
	if image = normalizeImageURL(image, base); image != "" {
		preview.Image = &image
	} else {
		preview.Image = nil
	}

	// 4) Textual price patterns when structured data had none
	if preview.Price == nil {
		m := pricePattern.FindSubmatch(page)
		if m == nil {
			m = currencyPricePattern.FindSubmatch(page)
		}
		if m != nil {
			if p, ok := parsePriceString(string(m[1])); ok {
				preview.Price = &p
			}
		}
	}
	return preview
}

// scanLDObject pulls name/image/price out of one JSON-LD object,
// filling only fields that are still unset
func scanLDObject(obj map[string]any, preview *linkPreview) {
	if preview.Title == nil {
		if name, ok := obj["name"].(string); ok && strings.TrimSpace(name) != "" {
			name = strings.TrimSpace(name)
			preview.Title = &name
		}
	}
	if preview.Image == nil {
		if image := ldImage(obj["image"]); image != "" {
			preview.Image = &image
		}
	}
	if preview.Price == nil {
		// Price lives either directly in the object or inside offers
		var offers []map[string]any
		switch o := obj["offers"].(type) {
		case map[string]any:
			offers = append(offers, o)
		case []any:
			for _, item := range o {
				if m, ok := item.(map[string]any); ok {
					offers = append(offers, m)
				}
			}
		}
		for _, offer := range offers {
			p := offer["price"]
			if p == nil {
				p = offer["lowPrice"]
			}
			switch v := p.(type) {
			case float64:
				preview.Price = &v
			case string:
				if parsed, ok := parsePriceString(v); ok {
					preview.Price = &parsed
				}
			}
			if preview.Price != nil {
				break
			}
		}
	}
}

// ldImage handles the image shapes sites use: a string, an ImageObject
// with a url field, or a list of either
func ldImage(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]any:
		if u, ok := img["url"].(string); ok {
			return u
		}
	case []any:
		if len(img) > 0 {
			return ldImage(img[0])
		}
	}
	return ""
}

// cleanTitle unescapes HTML entities and cuts off site-name tails
func cleanTitle(title string) string {
	title = html.UnescapeString(title)
	for _, sep := range []string{" | ", " — ", " - "} {
		if idx := strings.Index(title, sep); idx >= 0 {
			title = title[:idx]
			break
		}
	}
	return strings.Trim(title, "  -–—")
}

// normalizeImageURL makes protocol-relative and relative image paths absolute
func normalizeImageURL(image string, base *url.URL) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "//") {
		return "https:" + image
	}
	if !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") && base != nil {
		if ref, err := url.Parse(image); err == nil {
			return base.ResolveReference(ref).String()
		}
	}
	return image
}

// parsePriceString parses localized price strings ("12 999,90", NBSP groups)
func parsePriceString(raw string) (float64, bool) {
	raw = strings.NewReplacer(" ", "", " ", "", ",", ".").Replace(strings.TrimSpace(raw))
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

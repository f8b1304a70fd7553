package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractPreviewJSONLD(t *testing.T) {
	page := []byte(`<html><head>
		<script type="application/ld+json">
		{"@type":"Product","name":"Red Bicycle","image":"https://cdn.shop.example/bike.jpg",
		 "offers":{"@type":"Offer","price":"12 999,90","priceCurrency":"RUB"}}
		</script>
		<title>Red Bicycle buy cheap</title>
	</head><body></body></html>`)

	preview := extractPreview(page, mustURL(t, "https://shop.example/item/1"))
	require.NotNil(t, preview.Title)
	assert.Equal(t, "Red Bicycle", *preview.Title)
	require.NotNil(t, preview.Image)
	assert.Equal(t, "https://cdn.shop.example/bike.jpg", *preview.Image)
	require.NotNil(t, preview.Price)
	assert.Equal(t, 12999.90, *preview.Price)
}

func TestExtractPreviewOpenGraphWins(t *testing.T) {
	// og tags describe the page better than structured data and take priority
	page := []byte(`<html><head>
		<script type="application/ld+json">{"name":"Internal SKU 42","image":"/ld.jpg"}</script>
		<meta property="og:title" content="Blue Guitar &amp; Strap | MusicShop"/>
		<meta property="og:image" content="//cdn.shop.example/guitar.jpg"/>
	</head></html>`)

	preview := extractPreview(page, mustURL(t, "https://shop.example/guitar"))
	require.NotNil(t, preview.Title)
	assert.Equal(t, "Blue Guitar & Strap", *preview.Title) // Entities decoded, site tail cut
	require.NotNil(t, preview.Image)
	assert.Equal(t, "https://cdn.shop.example/guitar.jpg", *preview.Image) // Scheme added
	assert.Nil(t, preview.Price)
}

func TestExtractPreviewTitleFallback(t *testing.T) {
	page := []byte(`<html><head><title>Wooden Chess Set - BoardGames</title></head></html>`)
	preview := extractPreview(page, mustURL(t, "https://shop.example/chess"))
	require.NotNil(t, preview.Title)
	assert.Equal(t, "Wooden Chess Set", *preview.Title)
	assert.Nil(t, preview.Image)
	assert.Nil(t, preview.Price)
}

func TestExtractPreviewRelativeImage(t *testing.T) {
	page := []byte(`<html><head>
		<meta property="og:image" content="/images/lamp.png"/>
	</head></html>`)
	preview := extractPreview(page, mustURL(t, "https://shop.example/catalog/lamp"))
	require.NotNil(t, preview.Image)
	assert.Equal(t, "https://shop.example/images/lamp.png", *preview.Image)
}

func TestExtractPreviewImageObjectAndOffersList(t *testing.T) {
	page := []byte(`<html><head>
		<script type="application/ld+json">
		{"@type":"Product","name":"Kettle",
		 "image":{"@type":"ImageObject","url":"https://cdn.shop.example/kettle.jpg"},
		 "offers":[{"lowPrice":2490},{"price":2590}]}
		</script>
	</head></html>`)
	preview := extractPreview(page, nil)
	require.NotNil(t, preview.Image)
	assert.Equal(t, "https://cdn.shop.example/kettle.jpg", *preview.Image)
	require.NotNil(t, preview.Price)
	assert.Equal(t, 2490.0, *preview.Price) // First usable offer wins
}

func TestExtractPreviewPriceTextFallback(t *testing.T) {
	// No structured data at all; the raw "price": pattern is the last resort
	page := []byte(`<html><head><title>Teapot</title></head>
	<body><script>var state = {"price": "1 499"};</script></body></html>`)
	preview := extractPreview(page, nil)
	require.NotNil(t, preview.Price)
	assert.Equal(t, 1499.0, *preview.Price)
}

func TestExtractPreviewBrokenJSONLD(t *testing.T) {
	page := []byte(`<html><head>
		<script type="application/ld+json">{not json at all</script>
		<title>Plain Mug</title>
	</head></html>`)
	preview := extractPreview(page, nil)
	require.NotNil(t, preview.Title)
	assert.Equal(t, "Plain Mug", *preview.Title)
	assert.Nil(t, preview.Price)
}

func TestParsePriceString(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1299", 1299, true},
		{"12 999,90", 12999.90, true}, // Grouped thousands, decimal comma
		{"1 499", 1499, true},
		{"49.99", 49.99, true},
		{"free", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePriceString(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
		}
	}
}

// parsePreviewRequest drives the full handler against a URL value
func parsePreviewRequest(t *testing.T, target string) linkPreview {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/parse-url?url="+url.QueryEscape(target), nil)
	ParseURLHandler()(c)
	require.Equal(t, http.StatusOK, w.Code)
	var preview linkPreview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	return preview
}

func TestParseURLHandler(t *testing.T) {
	shop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head>
			<meta property="og:title" content="Toy Robot"/>
			<meta property="og:image" content="/robot.jpg"/>
			<script type="application/ld+json">{"offers":{"price":"790"}}</script>
		</head></html>`))
	}))
	defer shop.Close()

	preview := parsePreviewRequest(t, shop.URL+"/toys/robot")
	require.NotNil(t, preview.Title)
	assert.Equal(t, "Toy Robot", *preview.Title)
	require.NotNil(t, preview.Image)
	assert.Equal(t, shop.URL+"/robot.jpg", *preview.Image)
	require.NotNil(t, preview.Price)
	assert.Equal(t, 790.0, *preview.Price)
}

func TestParseURLHandlerDegradesToNulls(t *testing.T) {
	// Upstream errors and empty input both produce 200 with an all-null triple
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer broken.Close()

	for _, target := range []string{"", broken.URL} {
		preview := parsePreviewRequest(t, target)
		assert.Nil(t, preview.Title)
		assert.Nil(t, preview.Image)
		assert.Nil(t, preview.Price)
	}
}

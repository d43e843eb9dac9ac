package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stayflo/internal/planner"
	"stayflo/pkg/memcache"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

const (
	defaultPlacesBaseURL = "https://places.googleapis.com"
	searchTextPath       = "/v1/places:searchText"
	maxSearchResults     = 20
)

var searchFieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.googleMapsUri",
	"places.location",
	"places.rating",
	"places.userRatingCount",
	"places.priceLevel",
	"places.types",
	"places.photos",
	"places.currentOpeningHours",
	"places.regularOpeningHours",
}, ",")

const geocodeFieldMask = "places.location,places.formattedAddress,places.displayName"

type GeocodeResult struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Formatted string  `json:"formatted"`
}

// PlacesServiceInterface is the text search boundary plus geocoding of a
// free-form query (city, ZIP or address).
type PlacesServiceInterface interface {
	planner.CandidateSource
	Geocode(ctx context.Context, query string) (GeocodeResult, error)
}

type PlacesOptions struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RPS        float64
	Burst      int
	GeocodeTTL time.Duration
}

type GooglePlacesClient struct {
	HTTP       *http.Client
	apiKey     string
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	geocodes   memcache.Store[GeocodeResult]
	geocodeTTL time.Duration
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewGooglePlacesClient(opts PlacesOptions, m *metrics.Metrics, log *zap.Logger) *GooglePlacesClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultPlacesBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.GeocodeTTL <= 0 {
		opts.GeocodeTTL = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GooglePlacesClient{
		HTTP:       &http.Client{},
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		limiter:    rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		geocodes:   memcache.New[GeocodeResult](opts.GeocodeTTL, time.Hour),
		geocodeTTL: opts.GeocodeTTL,
		metrics:    m,
		log:        log.Named("places"),
	}
}

type latLngBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type circleBody struct {
	Center latLngBody `json:"center"`
	Radius float64    `json:"radius"`
}

type locationBiasBody struct {
	Circle circleBody `json:"circle"`
}

type searchTextBody struct {
	TextQuery      string            `json:"textQuery"`
	MaxResultCount int               `json:"maxResultCount,omitempty"`
	RegionCode     string            `json:"regionCode,omitempty"`
	LanguageCode   string            `json:"languageCode,omitempty"`
	LocationBias   *locationBiasBody `json:"locationBias,omitempty"`
}

type placePayload struct {
	ID          string `json:"id"`
	DisplayName *struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string      `json:"formattedAddress"`
	GoogleMapsURI    string      `json:"googleMapsUri"`
	Location         *latLngBody `json:"location"`
	Rating           *float64    `json:"rating"`
	UserRatingCount  *int        `json:"userRatingCount"`
	PriceLevel       string      `json:"priceLevel"`
	Types            []string    `json:"types"`
	Photos           []struct {
		Name string `json:"name"`
	} `json:"photos"`
	CurrentOpeningHours *struct {
		OpenNow             *bool    `json:"openNow"`
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"currentOpeningHours"`
	RegularOpeningHours *struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
}

type searchTextResponse struct {
	Places []placePayload `json:"places"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SearchText runs one Places text search. Results without a rating, or
// rated below req.MinRating, are dropped. The rest are sorted by score.
func (c *GooglePlacesClient) SearchText(ctx context.Context, req planner.SearchRequest) ([]planner.PlaceCandidate, error) {
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = 10
	}
	body := searchTextBody{
		TextQuery:      req.TextQuery,
		MaxResultCount: clampInt(maxResults, 1, maxSearchResults),
	}
	if req.Bias != nil {
		body.LocationBias = &locationBiasBody{Circle: circleBody{
			Center: latLngBody{Latitude: req.Bias.Center.Lat, Longitude: req.Bias.Center.Lng},
			Radius: clampFloat(req.Bias.RadiusMeters, 0, planner.MaxBiasRadiusMeters),
		}}
	}

	var payload searchTextResponse
	err := c.post(ctx, searchFieldMask, body, &payload)
	c.metrics.Provider("places", err)
	if err != nil {
		return nil, err
	}

	out := make([]planner.PlaceCandidate, 0, len(payload.Places))
	for _, p := range payload.Places {
		cand, ok := toCandidate(p)
		if !ok {
			continue
		}
		if cand.Rating == nil || *cand.Rating < req.MinRating {
			continue
		}
		out = append(out, cand)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Geocode resolves a free-form location to its first Places match.
func (c *GooglePlacesClient) Geocode(ctx context.Context, query string) (GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return GeocodeResult{}, fmt.Errorf("%w: missing query", utils.ErrInvalidInput)
	}
	key := strings.ToLower(query)
	if hit, ok := c.geocodes.Get(key); ok {
		c.metrics.Cache("geocode", true)
		return hit, nil
	}
	c.metrics.Cache("geocode", false)

	var payload searchTextResponse
	err := c.post(ctx, geocodeFieldMask, searchTextBody{TextQuery: query, RegionCode: "US", LanguageCode: "en"}, &payload)
	c.metrics.Provider("geocode", err)
	if err != nil {
		return GeocodeResult{}, err
	}
	if len(payload.Places) == 0 || payload.Places[0].Location == nil {
		return GeocodeResult{}, utils.ErrGeocodeNotFound
	}

	first := payload.Places[0]
	formatted := first.FormattedAddress
	if formatted == "" && first.DisplayName != nil {
		formatted = first.DisplayName.Text
	}
	if formatted == "" {
		formatted = query
	}
	res := GeocodeResult{Lat: first.Location.Latitude, Lng: first.Location.Longitude, Formatted: formatted}
	c.geocodes.Set(key, res, c.geocodeTTL)
	return res, nil
}

func (c *GooglePlacesClient) post(ctx context.Context, fieldMask string, body any, out *searchTextResponse) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: missing GOOGLE_MAPS_API_KEY", utils.ErrProviderUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: places rate limit: %v", utils.ErrProviderUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("places encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchTextPath, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: places http error: %v", utils.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		c.log.Warn("Places search failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)),
		)
		return fmt.Errorf("%w: places bad status: %s", utils.ErrProviderUnavailable, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: places decode: %v", utils.ErrProviderUnavailable, err)
	}
	return nil
}

func toCandidate(p placePayload) (planner.PlaceCandidate, bool) {
	if p.ID == "" || p.DisplayName == nil || p.DisplayName.Text == "" {
		return planner.PlaceCandidate{}, false
	}
	c := planner.PlaceCandidate{
		PlaceID:          p.ID,
		Name:             p.DisplayName.Text,
		Address:          p.FormattedAddress,
		MapsURI:          p.GoogleMapsURI,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingCount,
		PriceLevel:       priceLevelToNumber(p.PriceLevel),
		Types:            p.Types,
	}
	if p.Location != nil {
		lat, lng := p.Location.Latitude, p.Location.Longitude
		c.Lat, c.Lng = &lat, &lng
	}
	if len(p.Photos) > 0 {
		c.PhotoRef = p.Photos[0].Name
	}
	if p.CurrentOpeningHours != nil {
		c.OpenNow = p.CurrentOpeningHours.OpenNow
		c.WeekdayDescriptions = p.CurrentOpeningHours.WeekdayDescriptions
	}
	if len(c.WeekdayDescriptions) == 0 && p.RegularOpeningHours != nil {
		c.WeekdayDescriptions = p.RegularOpeningHours.WeekdayDescriptions
	}
	c.Score = planner.ScorePlace(c.Rating, c.UserRatingsTotal)
	return c, true
}

func priceLevelToNumber(level string) *int {
	var n int
	switch level {
	case "PRICE_LEVEL_FREE":
		n = 0
	case "PRICE_LEVEL_INEXPENSIVE":
		n = 1
	case "PRICE_LEVEL_MODERATE":
		n = 2
	case "PRICE_LEVEL_EXPENSIVE":
		n = 3
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		n = 4
	default:
		return nil
	}
	return &n
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampFloat(n, lo, hi float64) float64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayflo/internal/planner"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

const placesFixture = `{
  "places": [
    {"id": "low", "displayName": {"text": "Low Rated"}, "rating": 3.9, "userRatingCount": 900},
    {"id": "norating", "displayName": {"text": "No Rating"}},
    {"id": "", "displayName": {"text": "No Id"}, "rating": 4.9},
    {"id": "a", "displayName": {"text": "Alpha Tacos"}, "rating": 4.5, "userRatingCount": 10,
     "formattedAddress": "1 Main St", "googleMapsUri": "https://maps/a", "priceLevel": "PRICE_LEVEL_MODERATE",
     "location": {"latitude": 29.42, "longitude": -98.49}, "types": ["restaurant"],
     "photos": [{"name": "places/a/photos/1"}],
     "currentOpeningHours": {"openNow": true, "weekdayDescriptions": ["Monday: 8 AM-2 PM"]}},
    {"id": "b", "displayName": {"text": "Bravo BBQ"}, "rating": 4.7, "userRatingCount": 2500,
     "regularOpeningHours": {"weekdayDescriptions": ["Monday: Closed"]}}
  ]
}`

func newTestPlaces(t *testing.T, handler http.HandlerFunc) *GooglePlacesClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGooglePlacesClient(PlacesOptions{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		RPS:     100,
		Burst:   10,
	}, metrics.New(), nil)
}

func TestSearchText_FiltersMapsAndSorts(t *testing.T) {
	var body searchTextBody
	c := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchTextPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.currentOpeningHours")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(placesFixture))
	})

	got, err := c.SearchText(context.Background(), planner.SearchRequest{
		TextQuery:  "tacos San Antonio, TX",
		Bias:       &planner.Bias{Center: planner.LatLng{Lat: 29.4, Lng: -98.5}, RadiusMeters: 90_000},
		MinRating:  4.2,
		MaxResults: 16,
	})
	require.NoError(t, err)

	assert.Equal(t, "tacos San Antonio, TX", body.TextQuery)
	assert.Equal(t, 16, body.MaxResultCount)
	require.NotNil(t, body.LocationBias)
	assert.Equal(t, float64(planner.MaxBiasRadiusMeters), body.LocationBias.Circle.Radius)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].PlaceID, "higher score first")
	assert.Equal(t, []string{"Monday: Closed"}, got[0].WeekdayDescriptions)
	assert.Nil(t, got[0].OpenNow)

	a := got[1]
	assert.Equal(t, "Alpha Tacos", a.Name)
	require.NotNil(t, a.PriceLevel)
	assert.Equal(t, 2, *a.PriceLevel)
	require.NotNil(t, a.Lat)
	assert.InDelta(t, 29.42, *a.Lat, 1e-9)
	assert.True(t, a.IsOpenNow())
	assert.Equal(t, "places/a/photos/1", a.PhotoRef)
	assert.Equal(t, planner.ScorePlace(a.Rating, a.UserRatingsTotal), a.Score)
}

func TestSearchText_MaxResultsClamped(t *testing.T) {
	var body searchTextBody
	c := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{}`))
	})
	got, err := c.SearchText(context.Background(), planner.SearchRequest{TextQuery: "x", MaxResults: 99})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, maxSearchResults, body.MaxResultCount)
	assert.Nil(t, body.LocationBias)
}

func TestSearchText_Errors(t *testing.T) {
	c := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	})
	_, err := c.SearchText(context.Background(), planner.SearchRequest{TextQuery: "x"})
	assert.ErrorIs(t, err, utils.ErrProviderUnavailable)

	noKey := NewGooglePlacesClient(PlacesOptions{}, nil, nil)
	_, err = noKey.SearchText(context.Background(), planner.SearchRequest{TextQuery: "x"})
	assert.ErrorIs(t, err, utils.ErrProviderUnavailable)
}

func TestGeocode(t *testing.T) {
	var calls atomic.Int32
	c := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, geocodeFieldMask, r.Header.Get("X-Goog-FieldMask"))
		var body searchTextBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.TextQuery == "nowhere" {
			_, _ = w.Write([]byte(`{"places": []}`))
			return
		}
		assert.Equal(t, "US", body.RegionCode)
		_, _ = w.Write([]byte(`{"places":[{"location":{"latitude":29.5,"longitude":-98.6},"displayName":{"text":"78205"}}]}`))
	})

	got, err := c.Geocode(context.Background(), " 78205 ")
	require.NoError(t, err)
	assert.Equal(t, GeocodeResult{Lat: 29.5, Lng: -98.6, Formatted: "78205"}, got)

	_, err = c.Geocode(context.Background(), "78205")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second lookup served from cache")

	_, err = c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, utils.ErrGeocodeNotFound)

	_, err = c.Geocode(context.Background(), "  ")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestPriceLevelToNumber(t *testing.T) {
	assert.Nil(t, priceLevelToNumber(""))
	assert.Nil(t, priceLevelToNumber("PRICE_LEVEL_UNSPECIFIED"))
	free := priceLevelToNumber("PRICE_LEVEL_FREE")
	require.NotNil(t, free)
	assert.Equal(t, 0, *free)
	assert.Equal(t, 4, *priceLevelToNumber("PRICE_LEVEL_VERY_EXPENSIVE"))
}

package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"stayflo/internal/planner"
	"stayflo/pkg/memcache"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

// TravelEstimate is one origin to destination leg.
type TravelEstimate struct {
	DurationMinutes int
	DurationText    string
	DistanceMeters  int
	DistanceText    string
}

// TravelEstimator returns nil without error when the provider has no
// route for the pair or no key is configured.
type TravelEstimator interface {
	Estimate(ctx context.Context, fromPlaceID, toPlaceID string, t planner.Transport) (*TravelEstimate, error)
}

type pairKey struct {
	Mode string
	A    string
	B    string
}

func (k pairKey) String() string {
	return k.Mode + "|" + k.A + "|" + k.B
}

type MatrixOptions struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// GoogleMatrixClient asks the Distance Matrix API for a single pair of
// place ids and caches the answer per (mode, A, B).
type GoogleMatrixClient struct {
	client   *maps.Client
	timeout  time.Duration
	cache    memcache.Store[TravelEstimate]
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewGoogleMatrixClient builds the estimator. Without an API key every
// estimate is nil.
func NewGoogleMatrixClient(opts MatrixOptions, m *metrics.Metrics, log *zap.Logger) *GoogleMatrixClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 6 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &GoogleMatrixClient{
		timeout:  opts.Timeout,
		cache:    memcache.New[TravelEstimate](opts.CacheTTL, time.Hour),
		cacheTTL: opts.CacheTTL,
		metrics:  m,
		log:      log.Named("matrix"),
	}
	if opts.APIKey == "" {
		return c
	}

	mapsOpts := []maps.ClientOption{maps.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		mapsOpts = append(mapsOpts, maps.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")))
	}
	client, err := maps.NewClient(mapsOpts...)
	if err != nil {
		c.log.Warn("Distance matrix disabled", zap.Error(err))
		return c
	}
	c.client = client
	return c
}

// MatrixMode maps a transport preference to the provider's travel mode.
func MatrixMode(t planner.Transport) maps.Mode {
	switch t {
	case planner.TransportWalk:
		return maps.TravelModeWalking
	case planner.TransportBike:
		return maps.TravelModeBicycling
	default:
		return maps.TravelModeDriving
	}
}

func (c *GoogleMatrixClient) Estimate(ctx context.Context, fromPlaceID, toPlaceID string, t planner.Transport) (*TravelEstimate, error) {
	if c.client == nil || fromPlaceID == "" || toPlaceID == "" || fromPlaceID == toPlaceID {
		return nil, nil
	}
	k := pairKey{Mode: string(MatrixMode(t)), A: fromPlaceID, B: toPlaceID}
	if v, ok := c.cache.Get(k.String()); ok {
		c.metrics.Cache("travel", true)
		return &v, nil
	}
	c.metrics.Cache("travel", false)

	est, err := c.fetch(ctx, k)
	c.metrics.Provider("distance_matrix", err)
	if err != nil || est == nil {
		return nil, err
	}
	c.cache.Set(k.String(), *est, c.cacheTTL)
	return est, nil
}

func (c *GoogleMatrixClient) fetch(ctx context.Context, k pairKey) (*TravelEstimate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{"place_id:" + k.A},
		Destinations: []string{"place_id:" + k.B},
		Mode:         maps.Mode(k.Mode),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: distance matrix: %v", utils.ErrProviderUnavailable, err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, nil
	}
	el := resp.Rows[0].Elements[0]
	if el == nil || el.Status != "OK" || el.Duration <= 0 {
		return nil, nil
	}

	minutes := clampInt(int(math.Round(el.Duration.Minutes())), 1, 999)
	return &TravelEstimate{
		DurationMinutes: minutes,
		DurationText:    minutesText(minutes),
		DistanceMeters:  el.Distance.Meters,
		DistanceText:    el.Distance.HumanReadable,
	}, nil
}

func minutesText(n int) string {
	if n == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d mins", n)
}

// TravelTip renders the block tip for a leg, e.g.
// "About 12 min drive from your last stop (4.1 mi)."
func TravelTip(est *TravelEstimate, t planner.Transport) string {
	if est == nil {
		return ""
	}
	noun := "drive"
	switch t {
	case planner.TransportWalk:
		noun = "walk"
	case planner.TransportBike:
		noun = "bike ride"
	}
	tip := fmt.Sprintf("About %d min %s from your last stop", est.DurationMinutes, noun)
	if est.DistanceText != "" {
		tip += " (" + est.DistanceText + ")"
	}
	return tip + "."
}

// Package apifootball provides the data-feed client for api-football v3.
// All numeric coercion of feed values happens here, once, at ingestion;
// the monitor only ever sees parsed structures.
package apifootball

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zuenet070/livebets/internal/models"
)

// ErrNoStatistics means the statistics lookup returned fewer than two team
// blocks. The fixture is skipped for the tick, not marked as failed.
var ErrNoStatistics = errors.New("apifootball: statistics unavailable")

// ErrFixtureNotFound means a direct fixture lookup returned nothing.
var ErrFixtureNotFound = errors.New("apifootball: fixture not found")

// ClientConfig tunes retry, rate-limit, and caching behavior.
type ClientConfig struct {
	MaxRetries        int
	RetryDelayBase    time.Duration
	RequestsPerMinute int
	StatsCacheTTL     time.Duration
}

// Client talks to api-football. It owns the retry/backoff contract for
// transient failures and respects the upstream per-minute quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter

	maxRetries     int
	retryDelayBase time.Duration

	statsTTL   time.Duration
	statsCache map[int]cachedStats
}

type cachedStats struct {
	home, away models.TeamStats
	expiresAt  time.Time
}

// NewClient creates an api-football client.
func NewClient(baseURL, apiKey string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 100
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute/10+1),
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
		statsTTL:       cfg.StatsCacheTTL,
		statsCache:     make(map[int]cachedStats),
	}
}

type apiEnvelope struct {
	Response json.RawMessage `json:"response"`
}

type apiFixture struct {
	Fixture struct {
		ID     int `json:"id"`
		Status struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

func (a apiFixture) toModel() models.Fixture {
	fx := models.Fixture{
		ID:       a.Fixture.ID,
		Status:   a.Fixture.Status.Short,
		HomeTeam: a.Teams.Home.Name,
		AwayTeam: a.Teams.Away.Name,
	}
	if a.Fixture.Status.Elapsed != nil {
		fx.Minute = *a.Fixture.Status.Elapsed
		fx.HasMinute = true
	}
	if a.Goals.Home != nil {
		fx.GoalsHome = *a.Goals.Home
	}
	if a.Goals.Away != nil {
		fx.GoalsAway = *a.Goals.Away
	}
	return fx
}

// LiveFixtures returns the currently live fixtures, filtered to in-play
// status codes.
func (c *Client) LiveFixtures(ctx context.Context) ([]models.Fixture, error) {
	raw, err := c.get(ctx, "/fixtures", url.Values{"live": {"all"}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live fixtures: %w", err)
	}

	var items []apiFixture
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode live fixtures: %w", err)
	}

	fixtures := make([]models.Fixture, 0, len(items))
	for _, it := range items {
		fx := it.toModel()
		if !models.IsLiveStatus(fx.Status) && !models.IsTerminalStatus(fx.Status) {
			continue
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}

// FixtureByID fetches one fixture directly, used to re-check fixtures that
// vanished from the live feed.
func (c *Client) FixtureByID(ctx context.Context, fixtureID int) (models.Fixture, error) {
	raw, err := c.get(ctx, "/fixtures", url.Values{"id": {strconv.Itoa(fixtureID)}})
	if err != nil {
		return models.Fixture{}, fmt.Errorf("failed to fetch fixture %d: %w", fixtureID, err)
	}

	var items []apiFixture
	if err := json.Unmarshal(raw, &items); err != nil {
		return models.Fixture{}, fmt.Errorf("failed to decode fixture %d: %w", fixtureID, err)
	}
	if len(items) == 0 {
		return models.Fixture{}, ErrFixtureNotFound
	}
	return items[0].toModel(), nil
}

type apiTeamStats struct {
	Team struct {
		Name string `json:"name"`
	} `json:"team"`
	Statistics []struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	} `json:"statistics"`
}

// Statistics returns both sides' parsed statistic totals for a fixture.
// Results are cached briefly: several callers within one poll window see
// the same numbers without burning quota.
func (c *Client) Statistics(ctx context.Context, fixtureID int) (models.TeamStats, models.TeamStats, error) {
	if cached, ok := c.statsCache[fixtureID]; ok && time.Now().Before(cached.expiresAt) {
		return cached.home, cached.away, nil
	}

	raw, err := c.get(ctx, "/fixtures/statistics", url.Values{"fixture": {strconv.Itoa(fixtureID)}})
	if err != nil {
		return models.TeamStats{}, models.TeamStats{}, fmt.Errorf("failed to fetch statistics for fixture %d: %w", fixtureID, err)
	}

	var blocks []apiTeamStats
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return models.TeamStats{}, models.TeamStats{}, fmt.Errorf("failed to decode statistics for fixture %d: %w", fixtureID, err)
	}
	if len(blocks) < 2 {
		return models.TeamStats{}, models.TeamStats{}, ErrNoStatistics
	}

	home := parseTeamStats(blocks[0])
	away := parseTeamStats(blocks[1])

	if c.statsTTL > 0 {
		c.statsCache[fixtureID] = cachedStats{home: home, away: away, expiresAt: time.Now().Add(c.statsTTL)}
	}
	return home, away, nil
}

// DropCachedStats discards the cached block for a fixture, called after the
// fixture leaves the live feed.
func (c *Client) DropCachedStats(fixtureID int) {
	delete(c.statsCache, fixtureID)
}

func parseTeamStats(block apiTeamStats) models.TeamStats {
	var ts models.TeamStats
	for _, stat := range block.Statistics {
		v := models.CoerceStatValue(stat.Value)
		switch stat.Type {
		case "Shots on Goal":
			ts.ShotsOnTarget = v
		case "Total Shots":
			ts.TotalShots = v
		case "Corner Kicks":
			ts.Corners = v
		case "Ball Possession":
			ts.Possession = v
		case "Red Cards":
			ts.RedCards = v
		}
	}
	return ts
}

type apiOdds struct {
	Bookmakers []struct {
		Bets []struct {
			ID     int    `json:"id"`
			Name   string `json:"name"`
			Values []struct {
				Value string `json:"value"`
				Odd   string `json:"odd"`
			} `json:"values"`
		} `json:"bets"`
	} `json:"bookmakers"`
}

// matchWinnerBetID is api-football's bet id for the 1X2 market.
const matchWinnerBetID = 1

// WinOdds returns the first bookmaker's match-winner price for the given
// side, or 0 when no odds are listed.
func (c *Client) WinOdds(ctx context.Context, fixtureID int, side models.Side) (float64, error) {
	raw, err := c.get(ctx, "/odds", url.Values{
		"fixture": {strconv.Itoa(fixtureID)},
		"bet":     {strconv.Itoa(matchWinnerBetID)},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch odds for fixture %d: %w", fixtureID, err)
	}

	var items []apiOdds
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("failed to decode odds for fixture %d: %w", fixtureID, err)
	}

	want := "Home"
	if side == models.Away {
		want = "Away"
	}
	for _, item := range items {
		for _, bm := range item.Bookmakers {
			for _, bet := range bm.Bets {
				if bet.ID != matchWinnerBetID && bet.Name != "Match Winner" {
					continue
				}
				for _, v := range bet.Values {
					if v.Value != want {
						continue
					}
					odd, err := strconv.ParseFloat(v.Odd, 64)
					if err != nil {
						continue
					}
					return odd, nil
				}
			}
		}
	}
	return 0, nil
}

// get performs a rate-limited GET with linear-backoff retry and unwraps the
// api-football response envelope.
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(attempt)):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-apisports-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var env apiEnvelope
		err = json.NewDecoder(resp.Body).Decode(&env)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return env.Response, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, lastErr)
}

package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
)

const (
	UserAgent = "match-calendar/1.0 (github.com/maccabipedia/match-calendar)"
	Timeout   = 30 * time.Second

	// SeasonPlaceholder marks where the season number goes in a season URL
	SeasonPlaceholder = "{season}"

	// lastMatchMarker appears on every season page that has played matches
	lastMatchMarker = "המשחק האחרון"
	notFinalMarker  = "מועד לא סופי"
	youthMarker     = "לנוער"

	// MetricFetch times every page request
	MetricFetch = "scraper_fetch"

	// maxSeasons bounds discovery in case a site change keeps the marker on every page
	maxSeasons = 200
)

// ErrMalformedFixture means a linked fixture on a listing could not be read
var ErrMalformedFixture = errors.New("malformed fixture")

// Options configures a Scraper
type Options struct {
	UpcomingURL string
	SeasonURL   string // contains SeasonPlaceholder
	FirstSeason int
	WikiURL     string
	Client      *http.Client  // optional
	WikiTTL     time.Duration // optional, DefaultWikiCacheTTL when zero
}

// Scraper fetches fixtures from the club site
type Scraper struct {
	client      *http.Client
	upcomingURL string
	seasonURL   string
	firstSeason int
	wikiURL     string
	wiki        *wikiCache
	log         *logger.Logger
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: Timeout,
		}
	}

	return &Scraper{
		client:      client,
		upcomingURL: opts.UpcomingURL,
		seasonURL:   opts.SeasonURL,
		firstSeason: opts.FirstSeason,
		wikiURL:     strings.TrimRight(opts.WikiURL, "/"),
		wiki:        newWikiCache(opts.WikiTTL),
		log:         logger.Named("scraper"),
	}
}

// UpcomingURL returns the page listing matches not played yet
func (s *Scraper) UpcomingURL() string {
	return s.upcomingURL
}

// SeasonURL returns the results page of season n
func (s *Scraper) SeasonURL(n int) string {
	return strings.ReplaceAll(s.seasonURL, SeasonPlaceholder, strconv.Itoa(n))
}

// SeasonLinks probes season pages from the first season upwards and returns
// every page that shows a last match, oldest first.
func (s *Scraper) SeasonLinks(ctx context.Context) ([]string, error) {
	var links []string

	for n := s.firstSeason; n < s.firstSeason+maxSeasons; n++ {
		link := s.SeasonURL(n)

		body, status, err := s.get(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("probing season %d: %w", n, err)
		}
		if status != http.StatusOK || !strings.Contains(body, lastMatchMarker) {
			break
		}

		links = append(links, link)
		s.log.Debug("Found season", logger.Fields{"season": n, "url": link})
	}

	s.log.Info("Season discovery finished", logger.Fields{"seasons": len(links)})
	return links, nil
}

// FetchMatches scrapes the fixtures on pageURL. With playedOnly set only the
// first block of the page is read, which on a season page is the most
// recently played match. Blocks without a match link are skipped. Any other
// unreadable block fails the whole listing with ErrMalformedFixture, unless
// playedOnly is set, in which case it is logged and skipped.
func (s *Scraper) FetchMatches(ctx context.Context, pageURL string, playedOnly bool) ([]*match.Match, error) {
	if removed := s.wiki.cleanExpired(); removed > 0 {
		s.log.Debug("Expired wiki cache entries", logger.Fields{"removed": removed})
	}

	doc, err := s.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	holders := doc.Find("div.fixtures-holder")
	if playedOnly {
		holders = holders.First()
		if holders.Length() == 0 {
			s.log.Warn("No played match on page", logger.Fields{"url": pageURL})
			return nil, nil
		}
	}

	s.log.Debug("Found fixtures", logger.Fields{"url": pageURL, "count": holders.Length()})

	matches := make([]*match.Match, 0, holders.Length())
	for i := range holders.Nodes {
		sel := holders.Eq(i)

		if !playedOnly && skipFixture(sel) {
			s.log.Debug("Skipping fixture without final date or youth fixture", logger.Fields{"index": i})
			continue
		}

		m, err := s.parseFixture(ctx, base, sel)
		if err == nil {
			err = m.Validate()
		}
		if err != nil {
			// an unreadable linked fixture on a full listing would make its
			// stored entry look stale, so the whole page is rejected
			if !playedOnly && !errors.Is(err, errMissingLink) {
				return nil, fmt.Errorf("%w: fixture %d on %s: %w", ErrMalformedFixture, i, pageURL, err)
			}
			s.log.Warn("Skipping malformed fixture", logger.Fields{"url": pageURL, "index": i, "reason": err.Error()})
			continue
		}

		if !playedOnly && strings.Contains(m.Description, youthMarker) {
			s.log.Debug("Skipping youth fixture", logger.Fields{"url": m.URL()})
			continue
		}

		matches = append(matches, m)
	}

	s.log.Info("Fetched matches", logger.Fields{"url": pageURL, "count": len(matches)})
	return matches, nil
}

func skipFixture(sel *goquery.Selection) bool {
	text := sel.Text()
	return strings.Contains(text, notFinalMarker) || strings.Contains(text, youthMarker)
}

// get performs a GET and returns the body and status code
func (s *Scraper) get(ctx context.Context, pageURL string) (string, int, error) {
	resp, err := s.do(ctx, pageURL)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("reading body: %w", err)
	}

	return string(data), resp.StatusCode, nil
}

// document fetches pageURL and parses it as HTML
func (s *Scraper) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.do(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}

func (s *Scraper) do(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	logger.RecordTiming(MetricFetch, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	return resp, nil
}

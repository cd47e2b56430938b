package rumah123

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"rumah123-etl/config"
	"rumah123-etl/models"
	"rumah123-etl/utils"
)

const (
	baseURL = "https://www.rumah123.com"
	site    = "rumah123.com"
)

var (
	validAdsTypes      = map[string]bool{"jual": true, "sewa": true}
	validPropertyTypes = map[string]bool{
		"rumah": true, "apartemen": true, "kost": true, "villa": true, "hotel": true,
	}
)

var errRateLimited = errors.New("rumah123: rate limited")

// ValidateParams checks the extraction parameters before any browser work.
func ValidateParams(adsType, propertyType string, numPages int) error {
	if !validAdsTypes[adsType] {
		return fmt.Errorf("invalid ads type %q, must be one of jual, sewa", adsType)
	}
	if !validPropertyTypes[propertyType] {
		return fmt.Errorf("invalid property type %q, must be one of rumah, apartemen, kost, villa, hotel", propertyType)
	}
	if numPages <= 0 {
		return fmt.Errorf("num_pages must be a positive integer, got %d", numPages)
	}
	return nil
}

// Scraper extracts listing cards for one region from rumah123 search pages.
type Scraper struct {
	cfg          *config.Config
	region       *config.Region
	adsType      string
	propertyType string
	numPages     int

	logger  *utils.Logger
	limiter *RateLimiter
	retry   *utils.RetryConfig
	links   *utils.LinkSet
}

// New creates a ready-to-use Scraper after validating the parameters.
func New(cfg *config.Config, region *config.Region, adsType, propertyType string, numPages int, logger *utils.Logger) (*Scraper, error) {
	if err := ValidateParams(adsType, propertyType, numPages); err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:          cfg,
		region:       region,
		adsType:      adsType,
		propertyType: propertyType,
		numPages:     numPages,
		logger:       logger,
		limiter:      NewRateLimiter(time.Duration(cfg.BaseSleepMs)*time.Millisecond, logger),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		links: utils.NewLinkSet(),
	}, nil
}

// pageURL builds the search URL for one result page, newest listings first.
func (s *Scraper) pageURL(page int) string {
	return fmt.Sprintf("%s/%s/%s/%s/?sort=posted-desc&page=%d",
		baseURL, s.adsType, s.region.ID, s.propertyType, page)
}

// Scrape walks the search pages in order and collects raw listing cards.
// A 429 backs off and retries the same page; an empty page ends the scrape.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	s.logger.Info("[rumah123] Starting scrape — region: %s, %s/%s, %d pages",
		s.region.Name, s.adsType, s.propertyType, s.numPages)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	if chromeBin != "" {
		s.logger.Info("[rumah123] Using browser binary: %s", chromeBin)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	allocCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()

	var all []*models.RawListing
	blockedRetries := 0

	for page := 1; page <= s.numPages; page++ {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("[rumah123] Scrape interrupted — returning %d collected listings", len(all))
			return all, nil
		}

		s.limiter.Sleep()

		cards, err := s.scrapePage(allocCtx, page)
		if errors.Is(err, errRateLimited) {
			blockedRetries++
			if blockedRetries > s.cfg.MaxRetries {
				s.logger.Error("[rumah123] Still blocked after %d backoffs — giving up with %d listings", blockedRetries-1, len(all))
				return all, errRateLimited
			}
			s.limiter.HandleRateLimit()
			page-- // retry the current page after backing off
			continue
		}
		blockedRetries = 0
		if err != nil {
			s.logger.Error("[rumah123] Page %d failed: %v", page, err)
			s.limiter.HandleOtherError()
			continue
		}

		s.limiter.HandleSuccess()

		if len(cards) == 0 {
			s.logger.Info("[rumah123] No listings found on page %d — ending scrape", page)
			break
		}

		scrapedAt := time.Now()
		for _, c := range cards {
			if c.Href == "" {
				continue
			}
			link := site + c.Href
			if !s.links.Add(link) {
				s.logger.Debug("[rumah123] Duplicate link skipped: %s", link)
				continue
			}

			all = append(all, &models.RawListing{
				Link:               link,
				Name:               c.Name,
				RawPrice:           c.Price,
				Location:           pickLocation(c.Spans, s.region.Admins),
				LotSize:            c.LotSize,
				BuildingSize:       c.BuildingSize,
				Bedrooms:           c.Bedrooms,
				Bathrooms:          c.Bathrooms,
				Carports:           c.Carports,
				AdditionalFeatures: cleanBadgeText(c.Badge),
				AdsType:            s.adsType,
				PropertyType:       s.propertyType,
				ScrapedAt:          scrapedAt,
			})
		}

		s.logger.Info("[rumah123] Page %d done — collected %d listings so far", page, len(all))
	}

	s.logger.Info("[rumah123] Scrape complete — total raw listings: %d", len(all))
	return all, nil
}

// cardData is the per-card payload extracted in the browser.
type cardData struct {
	Href         string   `json:"href"`
	Name         string   `json:"name"`
	Price        string   `json:"price"`
	LotSize      string   `json:"lotSize"`
	BuildingSize string   `json:"buildingSize"`
	Bedrooms     string   `json:"bedrooms"`
	Bathrooms    string   `json:"bathrooms"`
	Carports     string   `json:"carports"`
	Badge        string   `json:"badge"`
	Spans        []string `json:"spans"`
}

// scrapePage loads one search results page and extracts its listing cards.
// Transient chromedp failures are retried; a detected block page returns
// errRateLimited without retrying so the limiter can back off.
func (s *Scraper) scrapePage(allocCtx context.Context, page int) ([]cardData, error) {
	var cards []cardData
	var blocked bool

	err := s.retry.Do(allocCtx, fmt.Sprintf("scrape-page-%d", page), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		cards = nil
		blocked = false

		err := chromedp.Run(ctx,
			chromedp.Navigate(s.pageURL(page)),
			chromedp.Sleep(4*time.Second),

			// Detect a block/ratelimit interstitial before parsing cards
			chromedp.Evaluate(`
				(function() {
					var title = (document.title || '').toLowerCase();
					var body = (document.body ? document.body.innerText : '').toLowerCase();
					return title.indexOf('429') !== -1 ||
					       body.indexOf('too many requests') !== -1 ||
					       body.indexOf('terlalu banyak permintaan') !== -1;
				})()
			`, &blocked),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('div.card-featured__middle-section');
					for (var i = 0; i < cards.length; i++) {
						var card = cards[i];

						var linkEl  = card.querySelector('a:not(.quick-label-badge)');
						var nameEl  = card.querySelector('h2');
						var priceEl = card.querySelector('div.card-featured__middle-section__price strong');
						var badgeEl = card.querySelector('div.card-featured__middle-section__header-badge');
						var attrs   = card.querySelectorAll('span.attribute-text');
						var sizes   = card.querySelectorAll('div.attribute-info');

						var spanTexts = [];
						var spans = card.querySelectorAll('span');
						for (var j = 0; j < spans.length; j++) {
							var t = spans[j].textContent.trim();
							if (t) spanTexts.push(t);
						}

						results.push({
							href:         linkEl ? linkEl.getAttribute('href') || '' : '',
							name:         nameEl ? nameEl.textContent.trim() : '',
							price:        priceEl ? priceEl.textContent.trim() : '',
							lotSize:      sizes.length > 0 ? sizes[0].textContent.trim() : '',
							buildingSize: sizes.length > 1 ? sizes[1].textContent.trim() : '',
							bedrooms:     attrs.length > 0 ? attrs[0].textContent.trim() : '',
							bathrooms:    attrs.length > 1 ? attrs[1].textContent.trim() : '',
							carports:     attrs.length > 2 ? attrs[2].textContent.trim() : '',
							badge:        badgeEl ? badgeEl.textContent.trim() : '',
							spans:        spanTexts
						});
					}
					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errRateLimited
	}

	s.logger.Debug("[rumah123] Page %d — found %d cards", page, len(cards))
	return cards, nil
}

// pickLocation returns the first span text that mentions one of the region's
// administrative names.
func pickLocation(spans []string, admins []string) string {
	for _, span := range spans {
		lower := strings.ToLower(span)
		for _, admin := range admins {
			if strings.Contains(lower, strings.ToLower(admin)) {
				return span
			}
		}
	}
	return ""
}

var (
	badgeLowerUpper = regexp.MustCompile(`([a-z])([A-Z])`)
	badgeAcronym    = regexp.MustCompile(`([A-Z]{2,})([A-Z][a-z])`)
	badgeSpacing    = regexp.MustCompile(`\s*,\s*`)
)

// cleanBadgeText splits the run-together badge text into a feature list.
// The first item is the property-type label and is dropped.
func cleanBadgeText(badge string) string {
	if badge == "" {
		return ""
	}
	s := badgeLowerUpper.ReplaceAllString(badge, "$1, $2")
	s = badgeAcronym.ReplaceAllString(s, "$1, $2")
	s = badgeSpacing.ReplaceAllString(s, ", ")
	s = strings.Trim(s, ", ")

	features := strings.Split(s, ", ")
	if len(features) <= 1 {
		return ""
	}
	return strings.Join(features[1:], ", ")
}

// findChromeBinary locates a usable Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

package winesearcherweb

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.openly.dev/pointy"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/model"
)

type WineJSON struct {
	Description string `json:"description"`
	Brand       struct {
		Name string `json:"name"`
	} `json:"brand"`
	Offers struct {
		LowPrice      float64 `json:"lowPrice"`
		PriceCurrency string  `json:"priceCurrency"`
	} `json:"offers"`
	AggregateRating struct {
		RatingValue float64 `json:"ratingValue"`
		ReviewCount int     `json:"reviewCount"`
	} `json:"aggregateRating"`
}

type WineScraped struct {
	IDLink string `attr:"href" selector:".wine-card__name > a"`
	Name   string `selector:".wine-card__name > a"`
	Region string `selector:".wine-card__region"`
	Grape  string `selector:".wine-card__grape"`
	Style  string `selector:".wine-card__style"`
	Price  string `selector:".wine-card__price"`
}

type scrapeResults struct {
	wines []model.Wine
	err   error
}

func (w *WineSearcherWebIntegration) FindWine(name string) ([]model.Wine, error) {
	collector := colly.NewCollector(
		colly.AllowedDomains("www.wine-searcher.com"),
		colly.UserAgent("Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:15.0) Gecko/20100101 Firefox/15.0.1"),
	)

	var (
		errs         error
		results      []model.Wine
		scrapedPages []WineScraped
	)

	collector.OnHTML(".wine-card", func(element *colly.HTMLElement) {
		scraped := WineScraped{}

		err := element.Unmarshal(&scraped)
		if multierr.AppendInto(&errs, err) {
			w.logger.Error("failed to unmarshal scraped wine", zap.Error(err))

			return
		}

		w.logger.Info("successfully scraped item from results", zap.String("id", idFromLink(scraped.IDLink)), zap.String("name", scraped.Name))

		scrapedPages = append(scrapedPages, scraped)
	})

	collector.OnError(func(response *colly.Response, err error) {
		w.logger.Error("error while scraping wine search results", zap.String("url", response.Request.URL.String()), zap.Error(err))
	})

	w.logger.Info("scraping query results", zap.String("query", name))
	multierr.AppendInto(&errs, collector.Visit("https://www.wine-searcher.com/find/"+name))

	var wineWG sync.WaitGroup

	wineChan := make(chan scrapeResults, len(scrapedPages))

	for _, scraped := range scrapedPages {
		scraped := scraped

		wineWG.Add(1)

		go func() {
			defer wineWG.Done()
			w.getWineData(collector.Clone(), scraped, wineChan)
		}()
	}

	wineWG.Wait()
	close(wineChan)

	wines, scrapeErrs := collectResults(wineChan)
	results = append(results, wines...)
	multierr.AppendInto(&errs, scrapeErrs)

	w.logger.Info("finished scraping query results", zap.Any("results", results), zap.Error(errs))

	return results, errs
}

func (w *WineSearcherWebIntegration) getWineData(detailCollector *colly.Collector, scraped WineScraped, wineChan chan scrapeResults) {
	idString := idFromLink(scraped.IDLink)

	wine := model.Wine{
		Name:         strings.TrimSpace(scraped.Name),
		Type:         extractWineType(scraped.Style, scraped.Grape),
		Region:       strings.TrimSpace(scraped.Region),
		Vintage:      extractVintage(scraped.Name),
		AveragePrice: extractPrice(scraped.Price),
		ExternalID:   pointy.String(idString),
	}

	if grape := strings.TrimSpace(scraped.Grape); grape != "" {
		wine.GrapeVarieties = strings.Split(grape, ", ")
	}

	detailCollector.OnHTML("head script[type='application/ld+json']", func(element *colly.HTMLElement) {
		var wineJSON WineJSON
		_ = json.Unmarshal([]byte(element.Text), &wineJSON)

		w.logger.Info("successfully scraped wine from JSON data", zap.String("id", idString), zap.String("winery", wineJSON.Brand.Name))

		wine.Winery = wineJSON.Brand.Name

		if wine.AveragePrice == nil && wineJSON.Offers.LowPrice > 0 {
			wine.AveragePrice = pointy.Float64(wineJSON.Offers.LowPrice)
		}
	})

	detailCollector.OnHTML(".wine-info__alcohol", func(element *colly.HTMLElement) {
		if wine.AlcoholContent == nil {
			wine.AlcoholContent = extractAlcohol(element.Text)
		}
	})

	detailCollector.OnHTML(".wine-info__country", func(element *colly.HTMLElement) {
		if wine.Country == "" {
			wine.Country = strings.TrimSpace(element.Text)
		}
	})

	w.logger.Info("scraping wine page", zap.String("id", idString))

	err := detailCollector.Visit("https://www.wine-searcher.com/wine/" + idString)

	wineChan <- scrapeResults{wines: []model.Wine{wine}, err: err}
}

// collectResults drains the closed channel in a single goroutine so the
// detail scrapes never touch the result slice concurrently.
func collectResults(wineChan chan scrapeResults) ([]model.Wine, error) {
	var (
		wines []model.Wine
		errs  error
	)

	for scraped := range wineChan {
		wines = append(wines, scraped.wines...)
		multierr.AppendInto(&errs, scraped.err)
	}

	return wines, errs
}

func idFromLink(link string) string {
	return link[strings.LastIndex(link, "/")+1:]
}

// extractVintage pulls a plausible four digit year out of the listing
// name, e.g. "Chateau Margaux 2015".
func extractVintage(name string) *int {
	for _, token := range strings.Fields(name) {
		if len(token) != 4 {
			continue
		}

		year, err := strconv.Atoi(token)
		if err == nil && model.ValidVintage(year) {
			return &year
		}
	}

	return nil
}

func extractPrice(price string) *float64 {
	cleaned := strings.TrimSpace(price)
	cleaned = strings.TrimLeft(cleaned, "$€£")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	if cleaned == "" {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}

	return &value
}

func extractAlcohol(text string) *float64 {
	if strings.Contains(text, "%") {
		abv, err := strconv.ParseFloat(strings.TrimSpace(text[:strings.Index(text, "%")]), 64) //nolint: gocritic // We know we won't get -1
		if err == nil {
			return &abv
		}
	}

	return nil
}

type styleType struct {
	keyword  string
	wineType string
}

// Checked in order so "sparkling rosé" lands on sparkling.
var styleTypes = []styleType{
	{"champagne", model.WineTypeChampagne},
	{"sparkling", model.WineTypeSparkling},
	{"fortified", model.WineTypeFortified},
	{"port", model.WineTypeFortified},
	{"sherry", model.WineTypeFortified},
	{"dessert", model.WineTypeDessert},
	{"sweet", model.WineTypeDessert},
	{"orange", model.WineTypeOrange},
	{"natural", model.WineTypeNatural},
	{"rosé", model.WineTypeRose},
	{"rose", model.WineTypeRose},
	{"white", model.WineTypeWhite},
	{"red", model.WineTypeRed},
}

// extractWineType maps the listing's style line to a catalog type,
// falling back to the grape line when the style is missing.
func extractWineType(style string, grape string) string {
	for _, source := range []string{style, grape} {
		lowered := strings.ToLower(source)

		for _, entry := range styleTypes {
			if strings.Contains(lowered, entry.keyword) {
				return entry.wineType
			}
		}
	}

	return model.WineTypeOther
}

// Package nft fetches marketplace floor prices for a token collection and
// joins them onto search results by token id. Enrichment is best-effort: a
// provider failure degrades results to unenriched, it never fails a search.
package nft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/metakai1/landsearch/internal/model"
)

// floorPricesResponse is the provider's wire format: a token id to price map.
type floorPricesResponse struct {
	Tokens map[string]float64 `json:"tokens"`
}

// Client talks to the marketplace price provider and keeps a per-collection
// price cache. Each successful fetch replaces the cache entry wholesale; there
// is no expiry at this layer. The HTTP client is injected so timeout policy
// belongs to the caller.
type Client struct {
	apiKey            string
	baseURL           string
	defaultCollection string
	httpClient        *http.Client
	logger            *logrus.Logger

	mu    sync.RWMutex
	cache map[string]*model.NFTPriceCache
}

// NewClient creates a marketplace price client. If httpClient is nil a default
// with a 10 second timeout is used.
func NewClient(apiKey, baseURL, defaultCollection string, httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:            apiKey,
		baseURL:           baseURL,
		defaultCollection: defaultCollection,
		httpClient:        httpClient,
		logger:            logger,
		cache:             make(map[string]*model.NFTPriceCache),
	}
}

// DefaultCollection returns the configured collection address.
func (c *Client) DefaultCollection() string {
	return c.defaultCollection
}

// FetchPrices retrieves current floor prices for the collection and replaces
// the cached entry for it. Transport failures and non-success responses fail
// with PriceFetchError.
func (c *Client) FetchPrices(ctx context.Context, collection string) ([]model.NFTPrice, error) {
	if collection == "" {
		collection = c.defaultCollection
	}

	endpoint := fmt.Sprintf("%s/tokens/floor/v1?collection=%s", c.baseURL, url.QueryEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.PriceFetchError{Collection: collection, Err: err}
	}
	req.Header.Set("accept", "*/*")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.PriceFetchError{Collection: collection, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.PriceFetchError{
			Collection: collection,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var body floorPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &model.PriceFetchError{Collection: collection, Err: err}
	}

	prices := make([]model.NFTPrice, 0, len(body.Tokens))
	for tokenID, price := range body.Tokens {
		prices = append(prices, model.NFTPrice{TokenID: tokenID, Price: price})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].TokenID < prices[j].TokenID })

	c.mu.Lock()
	c.cache[collection] = &model.NFTPriceCache{
		Collection:  collection,
		LastUpdated: time.Now().UTC(),
		Prices:      prices,
	}
	c.mu.Unlock()

	return prices, nil
}

// CachedPrices returns the last fetched price list for the collection, or nil
// when nothing has been fetched yet. It never triggers a fetch.
func (c *Client) CachedPrices(collection string) *model.NFTPriceCache {
	if collection == "" {
		collection = c.defaultCollection
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache[collection]
}

// Enrich fetches fresh prices and attaches them to results whose token id has
// a listing. Results without a token id or without a listing pass through
// unmodified. A fetch failure degrades to the unenriched input: search
// availability beats price freshness.
func (c *Client) Enrich(ctx context.Context, results []model.PropertyRecord, collection string) []model.PropertyRecord {
	if len(results) == 0 {
		return results
	}

	prices, err := c.FetchPrices(ctx, collection)
	if err != nil {
		c.logger.WithError(err).Warn("price enrichment degraded: returning unenriched results")
		return results
	}

	priceMap := make(map[string]float64, len(prices))
	for _, p := range prices {
		priceMap[p.TokenID] = p.Price
	}

	now := time.Now().UTC()
	enriched := make([]model.PropertyRecord, len(results))
	for i, record := range results {
		if record.Metadata.TokenID != "" {
			if price, ok := priceMap[record.Metadata.TokenID]; ok {
				record.Metadata.NFTData = &model.NFTData{Price: price, LastUpdated: now}
			}
		}
		enriched[i] = record
	}
	return enriched
}

// FilterForSale drops results lacking a positive enriched price. It must run
// after Enrich; before enrichment no record carries a price to filter on.
func FilterForSale(results []model.PropertyRecord) []model.PropertyRecord {
	forSale := make([]model.PropertyRecord, 0, len(results))
	for _, record := range results {
		if record.Metadata.NFTData != nil && record.Metadata.NFTData.Price > 0 {
			forSale = append(forSale, record)
		}
	}
	return forSale
}

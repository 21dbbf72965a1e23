package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	maxListNum     = 200
	defaultListNum = 50
	maxReviewsPage = 10
)

// App fetches a single app record via the lookup API.
func (c *Client) App(ctx context.Context, p AppParams) (json.RawMessage, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("id is required")
	}
	country := c.countryOr(p.Country)

	q := url.Values{}
	q.Set("id", p.ID)
	q.Set("country", country)
	q.Set("entity", "software")
	if p.Lang != "" {
		q.Set("lang", p.Lang)
	}

	body, status, err := c.get(ctx, c.itunesURL+"/lookup?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("lookup failed with status %d", status)
	}
	if gjson.GetBytes(body, "resultCount").Int() == 0 {
		return nil, fmt.Errorf("App not found (404)")
	}

	result := json.RawMessage(gjson.GetBytes(body, "results.0").Raw)
	if p.Ratings {
		result, err = c.attachRatings(ctx, p.ID, country, result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// attachRatings merges the ratings histogram into an app record. The
// histogram comes from the storefront reviews endpoint, which needs the
// X-Apple-Store-Front header instead of a country path segment.
func (c *Client) attachRatings(ctx context.Context, id, country string, app json.RawMessage) (json.RawMessage, error) {
	reviewsURL := fmt.Sprintf("%s/%s/customer-reviews/id%s?displayable-kind=11", c.itunesURL, country, id)
	header := http.Header{}
	header.Set("X-Apple-Store-Front", storeFront(country)+",12")

	body, status, err := c.get(ctx, reviewsURL, header)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ratings request failed with status %d", status)
	}

	total := gjson.GetBytes(body, "totalNumberOfReviews").Int()
	histogram := map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	counts := gjson.GetBytes(body, "ratingCountList").Array()
	for i, count := range counts {
		if i > 4 {
			break
		}
		histogram[fmt.Sprintf("%d", i+1)] = count.Int()
	}

	merged, err := sjson.SetBytes(app, "ratings", total)
	if err != nil {
		return nil, fmt.Errorf("merge ratings: %w", err)
	}
	merged, err = sjson.SetBytes(merged, "histogram", histogram)
	if err != nil {
		return nil, fmt.Errorf("merge histogram: %w", err)
	}
	return merged, nil
}

// List fetches a collection feed via the RSS API.
func (c *Client) List(ctx context.Context, p ListParams) (json.RawMessage, error) {
	if strings.TrimSpace(p.Collection) == "" {
		return nil, fmt.Errorf("collection is required")
	}
	num := p.Num
	if num <= 0 {
		num = defaultListNum
	}
	if num > maxListNum {
		return nil, fmt.Errorf("cannot retrieve more than %d apps", maxListNum)
	}

	genre := ""
	if p.Category > 0 {
		genre = fmt.Sprintf("/genre=%d", p.Category)
	}
	feedURL := fmt.Sprintf("%s/%s/rss/%s/limit=%d%s/json",
		c.itunesURL, c.countryOr(p.Country), p.Collection, num, genre)

	body, status, err := c.get(ctx, feedURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list request failed with status %d", status)
	}
	return feedEntries(body), nil
}

// Search queries the search API for software matching a term.
func (c *Client) Search(ctx context.Context, p SearchParams) (json.RawMessage, error) {
	if strings.TrimSpace(p.Term) == "" {
		return nil, fmt.Errorf("term is required")
	}
	num := p.Num
	if num <= 0 {
		num = defaultListNum
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}

	// The search API has no page parameter, so fetch enough results to
	// cover the requested page and slice locally.
	limit := num * page
	if limit > maxListNum {
		limit = maxListNum
	}

	q := url.Values{}
	q.Set("term", p.Term)
	q.Set("country", c.countryOr(p.Country))
	q.Set("media", "software")
	q.Set("limit", fmt.Sprintf("%d", limit))

	body, status, err := c.get(ctx, c.itunesURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status %d", status)
	}

	results := gjson.GetBytes(body, "results").Array()
	start := (page - 1) * num
	if start >= len(results) {
		return json.RawMessage("[]"), nil
	}
	end := start + num
	if end > len(results) {
		end = len(results)
	}
	return joinRaw(results[start:end]), nil
}

// Developer fetches a developer's apps via lookup on the artist ID. The
// first lookup result is the artist record itself and is dropped.
func (c *Client) Developer(ctx context.Context, p DeveloperParams) (json.RawMessage, error) {
	if strings.TrimSpace(p.DevID) == "" {
		return nil, fmt.Errorf("devId is required")
	}

	q := url.Values{}
	q.Set("id", p.DevID)
	q.Set("country", c.countryOr(p.Country))
	q.Set("entity", "software")

	body, status, err := c.get(ctx, c.itunesURL+"/lookup?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("lookup failed with status %d", status)
	}
	if gjson.GetBytes(body, "resultCount").Int() == 0 {
		return nil, fmt.Errorf("Developer not found (404)")
	}

	results := gjson.GetBytes(body, "results").Array()
	if len(results) <= 1 {
		return json.RawMessage("[]"), nil
	}
	return joinRaw(results[1:]), nil
}

// Reviews fetches one page of customer reviews via the RSS API.
func (c *Client) Reviews(ctx context.Context, p ReviewsParams) (json.RawMessage, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("id is required")
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	if page > maxReviewsPage {
		return nil, fmt.Errorf("page cannot be greater than %d", maxReviewsPage)
	}
	sort := p.Sort
	switch sort {
	case SortRecent, SortHelpful:
	case "":
		sort = SortRecent
	default:
		return nil, fmt.Errorf("invalid sort %q", p.Sort)
	}

	feedURL := fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortby=%s/json",
		c.itunesURL, c.countryOr(p.Country), page, p.ID, sort)

	body, status, err := c.get(ctx, feedURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("reviews request failed with status %d", status)
	}
	return feedEntries(body), nil
}

// Similar fetches the "customers also bought" list. The store only
// exposes it through the app page endpoint, which returns storefront
// JSON when asked with the X-Apple-Store-Front header.
func (c *Client) Similar(ctx context.Context, p IDParams) (json.RawMessage, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("id is required")
	}
	country := c.countryOr(p.Country)

	pageURL := fmt.Sprintf("%s/%s/app/app/id%s", c.itunesURL, country, p.ID)
	header := http.Header{}
	header.Set("X-Apple-Store-Front", storeFront(country)+",32")

	body, status, err := c.get(ctx, pageURL, header)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("App not found (404)")
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("similar request failed with status %d", status)
	}

	ids := gjson.GetBytes(body, "pageData.customersAlsoBoughtApps").Array()
	if len(ids) == 0 {
		return json.RawMessage("[]"), nil
	}

	idList := make([]string, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, id.String())
	}

	q := url.Values{}
	q.Set("id", strings.Join(idList, ","))
	q.Set("country", country)
	q.Set("entity", "software")

	body, status, err = c.get(ctx, c.itunesURL+"/lookup?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("lookup failed with status %d", status)
	}
	return json.RawMessage(gjson.GetBytes(body, "results").Raw), nil
}

// Privacy fetches an app's privacy detail labels from the catalog API.
func (c *Client) Privacy(ctx context.Context, p IDParams) (json.RawMessage, error) {
	return c.catalogAttribute(ctx, p, "fields=privacyDetails", "data.0.attributes.privacyDetails")
}

// VersionHistory fetches an app's release history from the catalog API.
func (c *Client) VersionHistory(ctx context.Context, p IDParams) (json.RawMessage, error) {
	return c.catalogAttribute(ctx, p, "extend=versionHistory",
		"data.0.attributes.platformAttributes.ios.versionHistory")
}

// catalogAttribute calls the amp-api catalog endpoint and extracts one
// attribute path. The endpoint requires a bearer token scraped from the
// app's web page.
func (c *Client) catalogAttribute(ctx context.Context, p IDParams, query, path string) (json.RawMessage, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("id is required")
	}
	country := c.countryOr(p.Country)

	token, err := c.webToken(ctx, p.ID, country)
	if err != nil {
		return nil, err
	}

	catalogURL := fmt.Sprintf("%s/v1/catalog/%s/apps/%s?platform=web&%s",
		c.ampURL, country, p.ID, query)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Origin", defaultWebURL)

	body, status, err := c.get(ctx, catalogURL, header)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("App not found (404)")
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed with status %d", status)
	}

	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(result.Raw), nil
}

// environmentMeta locates the web app's embedded environment config,
// which carries the media API token.
var environmentMeta = regexp.MustCompile(
	`<meta name="web-experience-app/config/environment" content="([^"]+)"`)

// webToken extracts the media API bearer token from the app's web page.
func (c *Client) webToken(ctx context.Context, id, country string) (string, error) {
	pageURL := fmt.Sprintf("%s/%s/app/id%s", c.webURL, country, id)

	body, status, err := c.get(ctx, pageURL, nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("App not found (404)")
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("app page request failed with status %d", status)
	}

	match := environmentMeta.FindSubmatch(body)
	if match == nil {
		return "", fmt.Errorf("app page carries no environment config")
	}
	decoded, err := url.QueryUnescape(string(match[1]))
	if err != nil {
		return "", fmt.Errorf("decode environment config: %w", err)
	}

	token := gjson.Get(decoded, "MEDIA_API.token").String()
	if token == "" {
		return "", fmt.Errorf("environment config carries no media token")
	}
	return token, nil
}

// feedEntries extracts the entry list from an RSS feed body. A feed with
// one item serializes the entry as an object, not a one-element array.
func feedEntries(body []byte) json.RawMessage {
	entries := gjson.GetBytes(body, "feed.entry")
	if !entries.Exists() {
		return json.RawMessage("[]")
	}
	if entries.IsArray() {
		return json.RawMessage(entries.Raw)
	}
	return json.RawMessage("[" + entries.Raw + "]")
}

// joinRaw reassembles gjson results into a JSON array without
// re-marshaling the individual elements.
func joinRaw(results []gjson.Result) json.RawMessage {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Raw)
	}
	return json.RawMessage("[" + strings.Join(parts, ",") + "]")
}

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// httpClient is shared across providers with a bounded per-call timeout
// (spec §5: "every outbound network call has a bounded timeout").
var httpClient = &http.Client{Timeout: 10 * time.Second}

// TMDBProvider resolves against The Movie Database's search API.
type TMDBProvider struct {
	APIKey        string
	BaseURL       string
	minSimilarity float64
}

func NewTMDBProvider(apiKey, baseURL string, minSimilarity float64) *TMDBProvider {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &TMDBProvider{APIKey: apiKey, BaseURL: baseURL, minSimilarity: minSimilarity}
}

func (p *TMDBProvider) Name() string           { return "tmdb" }
func (p *TMDBProvider) Weight() float64        { return 1.0 }
func (p *TMDBProvider) MinSimilarity() float64 { return p.minSimilarity }

type tmdbSearchResponse struct {
	Results []struct {
		ID           int    `json:"id"`
		Title        string `json:"title"`
		OriginalName string `json:"original_name"`
		ReleaseDate  string `json:"release_date"`
	} `json:"results"`
}

func (p *TMDBProvider) Resolve(ctx context.Context, q Query) (*Metadata, error) {
	for _, title := range boundedTitles(q.Titles, 3) {
		u := fmt.Sprintf("%s/search/multi?api_key=%s&query=%s", p.BaseURL, p.APIKey, url.QueryEscape(title))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("metadata: tmdb request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("metadata: tmdb search %q: %w", title, err)
		}
		var parsed tmdbSearchResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil || len(parsed.Results) == 0 {
			continue
		}
		r := parsed.Results[0]
		year, _ := strconv.Atoi(firstFour(r.ReleaseDate))
		return &Metadata{
			OriginalTitle:   firstNonEmpty(r.Title, r.OriginalName),
			LocalizedTitles: map[string]string{"en": r.Title},
			Year:            year,
			ExternalIDs:     map[string]string{"tmdb": strconv.Itoa(r.ID)},
			Confidence:      1.0,
		}, nil
	}
	return nil, nil
}

// BangumiProvider resolves against bgm.tv's subject search API, the
// go-to source for Japanese anime metadata.
type BangumiProvider struct {
	BaseURL       string
	minSimilarity float64
}

func NewBangumiProvider(baseURL string, minSimilarity float64) *BangumiProvider {
	if baseURL == "" {
		baseURL = "https://api.bgm.tv"
	}
	return &BangumiProvider{BaseURL: baseURL, minSimilarity: minSimilarity}
}

func (p *BangumiProvider) Name() string           { return "bangumi" }
func (p *BangumiProvider) Weight() float64        { return 0.8 }
func (p *BangumiProvider) MinSimilarity() float64 { return p.minSimilarity }

type bangumiSearchResponse struct {
	List []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		NameCN    string `json:"name_cn"`
		AirDate   string `json:"air_date"`
	} `json:"list"`
}

func (p *BangumiProvider) Resolve(ctx context.Context, q Query) (*Metadata, error) {
	for _, title := range boundedTitles(q.Titles, 3) {
		u := fmt.Sprintf("%s/search/subject/%s?type=2", p.BaseURL, url.PathEscape(title))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("metadata: bangumi request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("metadata: bangumi search %q: %w", title, err)
		}
		var parsed bangumiSearchResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil || len(parsed.List) == 0 {
			continue
		}
		r := parsed.List[0]
		year, _ := strconv.Atoi(firstFour(r.AirDate))
		return &Metadata{
			OriginalTitle:   r.Name,
			LocalizedTitles: map[string]string{"zh": r.NameCN},
			Year:            year,
			ExternalIDs:     map[string]string{"bangumi": strconv.Itoa(r.ID)},
			Confidence:      1.0,
		}, nil
	}
	return nil, nil
}

// WMDBProvider resolves against WMDB, a lower-confidence fallback source
// kept for coverage of obscure releases the two primary providers miss.
type WMDBProvider struct {
	BaseURL       string
	minSimilarity float64
}

func NewWMDBProvider(baseURL string, minSimilarity float64) *WMDBProvider {
	if baseURL == "" {
		baseURL = "https://www.wmdb.tv/api"
	}
	return &WMDBProvider{BaseURL: baseURL, minSimilarity: minSimilarity}
}

func (p *WMDBProvider) Name() string           { return "wmdb" }
func (p *WMDBProvider) Weight() float64        { return 0.5 }
func (p *WMDBProvider) MinSimilarity() float64 { return p.minSimilarity }

type wmdbSearchResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Year  int    `json:"year"`
	} `json:"data"`
}

func (p *WMDBProvider) Resolve(ctx context.Context, q Query) (*Metadata, error) {
	for _, title := range boundedTitles(q.Titles, 3) {
		u := fmt.Sprintf("%s/search?q=%s", p.BaseURL, url.QueryEscape(title))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("metadata: wmdb request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("metadata: wmdb search %q: %w", title, err)
		}
		var parsed wmdbSearchResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil || len(parsed.Data) == 0 {
			continue
		}
		r := parsed.Data[0]
		return &Metadata{
			OriginalTitle:   r.Title,
			LocalizedTitles: map[string]string{},
			Year:            r.Year,
			ExternalIDs:     map[string]string{"wmdb": r.ID},
			Confidence:      1.0,
		}, nil
	}
	return nil, nil
}

func boundedTitles(titles []string, max int) []string {
	if len(titles) > max {
		return titles[:max]
	}
	return titles
}

func firstFour(s string) string {
	if len(s) < 4 {
		return ""
	}
	return s[:4]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

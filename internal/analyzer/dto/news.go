package dto

// NewsItem is a search result in relevance order. Content is nil when the source
// returned no content field.
type NewsItem struct {
	Title   string
	URL     string
	Content *string
	Source  string
}

// TavilySearchRequest is the body of a Tavily search call.
type TavilySearchRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// TavilySearchResponse is the body returned by Tavily search.
type TavilySearchResponse struct {
	Query        string         `json:"query"`
	Results      []TavilyResult `json:"results"`
	ResponseTime float64        `json:"response_time"`
}

type TavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    *string `json:"content"`
	RawContent *string `json:"raw_content"`
	Score      float64 `json:"score"`
}

// TavilyErrorResponse is returned by Tavily on non-2xx responses.
type TavilyErrorResponse struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

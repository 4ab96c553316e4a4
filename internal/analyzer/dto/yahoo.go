package dto

// YahooSearchResponse is the body of the Yahoo Finance search endpoint.
type YahooSearchResponse struct {
	Count  int          `json:"count"`
	Quotes []YahooQuote `json:"quotes"`
}

// YahooQuote is one quote match. Only Symbol is required by the pipeline.
type YahooQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}

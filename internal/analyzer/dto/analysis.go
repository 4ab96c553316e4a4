package dto

// Sentiment is the overall tone picked by the analyzer.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Sentiments lists the accepted sentiment labels in schema order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Valid reports whether s is one of the accepted labels.
func (s Sentiment) Valid() bool {
	for _, v := range Sentiments {
		if s == v {
			return true
		}
	}
	return false
}

// AnalysisResult is the structured summary produced by the aggregate_company_news function call.
type AnalysisResult struct {
	CompanyName            string    `json:"company_name"`
	StockCode              string    `json:"stock_code"`
	NewsDesc               string    `json:"newsdesc"`
	Sentiment              Sentiment `json:"sentiment"`
	PeopleNames            []string  `json:"people_names,omitempty"`
	PlacesNames            []string  `json:"places_names,omitempty"`
	OtherCompaniesReferred []string  `json:"other_companies_referred,omitempty"`
	RelatedIndustries      []string  `json:"related_industries,omitempty"`
	MarketImplications     string    `json:"market_implications,omitempty"`
	ConfidenceScore        float64   `json:"confidence_score"`
}

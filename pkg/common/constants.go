package common

const (
	RedisStreamAnalysisRequest = "stock.news.analysis.request"
	RedisStreamAnalysisResult  = "stock.news.analysis.result"

	RedisStreamGroup    = "analyzer-group"
	RedisStreamConsumer = "analyzer-consumer"
)

// Tracking run names.
const (
	PipelineRunPrefix     = "stock_analysis_pipeline"
	SpanTickerExtraction  = "stock_code_extraction"
	SpanNewsFetching      = "news_fetching"
	SpanSentimentAnalysis = "sentiment_parsing"
)

const (
	PipelineVersion = "1.0"
	PipelineType    = "stock_news_analysis"

	DefaultMaxNewsResults = 5
	MaxSnippetLength      = 300
	MissingContent        = "No content"

	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

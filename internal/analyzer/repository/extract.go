package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang-stock-news-analyzer/internal/analyzer/dto"

	"google.golang.org/genai"
)

// ExtractionKind tags the outcome of reading a function call out of a model response.
type ExtractionKind int

const (
	ExtractionNoMatch ExtractionKind = iota
	ExtractionMatched
	ExtractionMalformed
)

func (k ExtractionKind) String() string {
	switch k {
	case ExtractionMatched:
		return "matched"
	case ExtractionMalformed:
		return "malformed"
	default:
		return "no_match"
	}
}

// Extraction is the result of ExtractAnalysis. Result is set only when Kind is ExtractionMatched.
type Extraction struct {
	Kind          ExtractionKind
	Result        *dto.AnalysisResult
	Reason        string
	FunctionCalls int
}

// Err maps the extraction onto the repository's sentinel errors.
func (e Extraction) Err() error {
	switch e.Kind {
	case ExtractionMatched:
		return nil
	case ExtractionMalformed:
		return fmt.Errorf("%w: %s", ErrMalformedFunctionCall, e.Reason)
	default:
		return ErrNoFunctionCall
	}
}

// ExtractAnalysis reads the first aggregate_company_news call from the first candidate
// and validates its arguments. Later calls are counted but never considered.
func ExtractAnalysis(resp *genai.GenerateContentResponse) Extraction {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Extraction{Kind: ExtractionNoMatch, Reason: "empty response"}
	}

	out := Extraction{Kind: ExtractionNoMatch, Reason: "no " + AggregateFunctionName + " call in response"}
	matched := false
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		out.FunctionCalls++
		if matched || part.FunctionCall.Name != AggregateFunctionName {
			continue
		}
		matched = true

		result, err := parseAggregateArgs(part.FunctionCall.Args)
		if err != nil {
			out.Kind = ExtractionMalformed
			out.Reason = err.Error()
			continue
		}
		out.Kind = ExtractionMatched
		out.Result = result
		out.Reason = ""
	}
	return out
}

func parseAggregateArgs(args map[string]interface{}) (*dto.AnalysisResult, error) {
	if args == nil {
		return nil, fmt.Errorf("missing arguments")
	}

	var result dto.AnalysisResult
	var err error

	if result.CompanyName, err = requiredString(args, "company_name"); err != nil {
		return nil, err
	}
	if result.StockCode, err = requiredString(args, "stock_code"); err != nil {
		return nil, err
	}
	if result.NewsDesc, err = requiredString(args, "newsdesc"); err != nil {
		return nil, err
	}

	sentiment, err := requiredString(args, "sentiment")
	if err != nil {
		return nil, err
	}
	result.Sentiment = dto.Sentiment(sentiment)
	if !result.Sentiment.Valid() {
		return nil, fmt.Errorf("sentiment %q is not one of %v", sentiment, dto.Sentiments)
	}

	score, ok := args["confidence_score"]
	if !ok || score == nil {
		return nil, fmt.Errorf("missing required field confidence_score")
	}
	if result.ConfidenceScore, err = toFloat(score); err != nil {
		return nil, fmt.Errorf("confidence_score: %w", err)
	}
	if math.IsNaN(result.ConfidenceScore) || result.ConfidenceScore < 0 || result.ConfidenceScore > 1 {
		return nil, fmt.Errorf("confidence_score %v is outside [0, 1]", result.ConfidenceScore)
	}

	if result.PeopleNames, err = optionalStrings(args, "people_names"); err != nil {
		return nil, err
	}
	if result.PlacesNames, err = optionalStrings(args, "places_names"); err != nil {
		return nil, err
	}
	if result.OtherCompaniesReferred, err = optionalStrings(args, "other_companies_referred"); err != nil {
		return nil, err
	}
	if result.RelatedIndustries, err = optionalStrings(args, "related_industries"); err != nil {
		return nil, err
	}

	if v, ok := args["market_implications"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("market_implications must be a string, got %T", v)
		}
		result.MarketImplications = s
	}

	return &result, nil
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %s is empty", key)
	}
	return s, nil
}

func optionalStrings(args map[string]interface{}, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of strings, got %T", key, v)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("must be a number, got %T", v)
	}
}

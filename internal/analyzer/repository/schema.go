package repository

import (
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/pkg/utils"

	"google.golang.org/genai"
)

// AggregateFunctionName is the name of the function the model must call.
const AggregateFunctionName = "aggregate_company_news"

const aggregateFunctionDescription = "Aggregate multiple news headlines about a company into one JSON object summarizing sentiment, entities, industries, and market implications."

type schemaField struct {
	name        string
	kind        genai.Type
	description string
	enum        []string
	minimum     *float64
	maximum     *float64
}

var aggregateFields = []schemaField{
	{name: "company_name", kind: genai.TypeString, description: "Full legal name of the company being analyzed."},
	{name: "stock_code", kind: genai.TypeString, description: "The company's stock ticker symbol."},
	{name: "newsdesc", kind: genai.TypeString, description: "One synthesized summary paragraph combining all the provided headlines."},
	{name: "sentiment", kind: genai.TypeString, description: "Overall sentiment of the aggregated news.", enum: sentimentValues()},
	{name: "people_names", kind: genai.TypeArray, description: "List of individual people mentioned in the news."},
	{name: "places_names", kind: genai.TypeArray, description: "List of geographic locations mentioned in the news."},
	{name: "other_companies_referred", kind: genai.TypeArray, description: "List of other companies mentioned in the news besides the main one."},
	{name: "related_industries", kind: genai.TypeArray, description: "Industries relevant to the news."},
	{name: "market_implications", kind: genai.TypeString, description: "Implications of the news on market performance or company stock."},
	{name: "confidence_score", kind: genai.TypeNumber, description: "Confidence level for the analysis.", minimum: utils.ToPointer(0.0), maximum: utils.ToPointer(1.0)},
}

var aggregateRequired = []string{"company_name", "stock_code", "newsdesc", "sentiment", "confidence_score"}

func sentimentValues() []string {
	out := make([]string, 0, len(dto.Sentiments))
	for _, s := range dto.Sentiments {
		out = append(out, string(s))
	}
	return out
}

// AggregateCompanyNewsDeclaration returns the function declaration handed to the model.
func AggregateCompanyNewsDeclaration() *genai.FunctionDeclaration {
	properties := make(map[string]*genai.Schema, len(aggregateFields))
	for _, f := range aggregateFields {
		prop := &genai.Schema{
			Type:        f.kind,
			Description: f.description,
			Enum:        f.enum,
			Minimum:     f.minimum,
			Maximum:     f.maximum,
		}
		if f.kind == genai.TypeArray {
			prop.Items = &genai.Schema{Type: genai.TypeString}
		}
		properties[f.name] = prop
	}

	return &genai.FunctionDeclaration{
		Name:        AggregateFunctionName,
		Description: aggregateFunctionDescription,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
			Required:   append([]string(nil), aggregateRequired...),
		},
	}
}

// AggregateCompanyNewsSchema returns the same declaration as a plain JSON-schema document.
func AggregateCompanyNewsSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(aggregateFields))
	for _, f := range aggregateFields {
		prop := map[string]interface{}{
			"type":        jsonSchemaType(f.kind),
			"description": f.description,
		}
		if len(f.enum) > 0 {
			prop["enum"] = f.enum
		}
		if f.minimum != nil {
			prop["minimum"] = *f.minimum
		}
		if f.maximum != nil {
			prop["maximum"] = *f.maximum
		}
		if f.kind == genai.TypeArray {
			prop["items"] = map[string]interface{}{"type": "string"}
		}
		properties[f.name] = prop
	}

	return map[string]interface{}{
		"name":        AggregateFunctionName,
		"description": aggregateFunctionDescription,
		"parameters": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   aggregateRequired,
		},
	}
}

func jsonSchemaType(t genai.Type) string {
	switch t {
	case genai.TypeString:
		return "string"
	case genai.TypeArray:
		return "array"
	case genai.TypeNumber:
		return "number"
	case genai.TypeObject:
		return "object"
	default:
		return "string"
	}
}

package repository

import (
	"fmt"
	"strings"
)

// JoinNews numbers each snippet from 1 and separates them with a blank line.
func JoinNews(snippets []string) string {
	parts := make([]string, 0, len(snippets))
	for i, s := range snippets {
		parts = append(parts, fmt.Sprintf("News %d: %s", i+1, s))
	}
	return strings.Join(parts, "\n\n")
}

func BuildAggregateNewsPrompt(company, ticker, newsText string) string {
	promptTemplate := `Analyze the following news articles about %s (Stock: %s) and call the %s function with the extracted information.

News Articles:
%s

Instructions:
1. Synthesize all news into one coherent summary for 'newsdesc'
2. Determine overall sentiment (Positive/Negative/Neutral)
3. Extract all person names, places, other companies, and industries mentioned
4. Analyze market implications
5. Provide confidence score between 0.0 and 1.0

Use the %s function to return the structured analysis.
`
	return fmt.Sprintf(promptTemplate, company, ticker, AggregateFunctionName, newsText, AggregateFunctionName)
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/listing-assistant/internal/model"
)

func gatePrompt(query string) string {
	return fmt.Sprintf(`You are a classifier that decides whether a query is about real estate in London, UK or not.

Return ONLY "yes" or "no".

Query: %q

Your answer:`, query)
}

func classifyPrompt(query string) string {
	return fmt.Sprintf(`You are a classifier that decides how to handle user queries about London real estate data.

Classify the query into one of exactly three categories:

1. output
Use this if the user wants raw data (listings, tables) or summary statistics
and descriptive text (average price, count, max/min). No visualizations.
Examples:
- "List all apartments in Kensington"
- "What is the average rent in Hackney?"
- "How many listings are available in Zone 2?"

2. plot_stats
Use this only if the user wants a visual statistical plot such as a
histogram, bar chart, line chart or boxplot. This includes visual
comparisons, distributions and trends.
Examples:
- "Plot a histogram of flat prices in London"
- "Compare visually prices for 2BR vs 3BR in Camden"
- "Show a bar chart of number of listings per borough"

3. geospatial_plot
Use this only if the user explicitly wants a map or refers to spatial
layout: proximity to landmarks, directional comparisons (north/south/east/west),
coordinates or regions visualized on a map.
Examples:
- "Map properties near Hyde Park"
- "Visualize all listings on a London map"
- "Compare prices north and south of the Thames"

Query: %q

Your answer (return ONLY one of: %s):`, query, intentChoices())
}

func intentChoices() string {
	labels := make([]string, 0, 3)
	for _, i := range model.AllIntents() {
		labels = append(labels, fmt.Sprintf("%q", i))
	}
	return strings.Join(labels, ", ")
}

package agent

import "kaiwa/llm"

// Prompts and schemas for the model-assisted steps of the search agent. The
// instructions are bilingual where user input may arrive in Japanese.

const searchDecisionPrompt = `Decide whether answering the user's message requires searching the web for current information. Messages about recent events, prices, weather, schedules, releases, or anything time-sensitive need a search; general knowledge, coding help, and conversation do not.

User message: %s`

var searchDecisionSchema = &llm.Schema{
	Name: "search_decision",
	Properties: map[string]llm.SchemaProperty{
		"should_search": {Type: "boolean", Description: "true if a web search is needed to answer"},
		"reason":        {Type: "string", Description: "one short sentence explaining the decision"},
	},
	Required: []string{"should_search", "reason"},
	Order:    []string{"should_search", "reason"},
}

const searchQueryPrompt = `Write a concise web search query (at most 100 characters) that would find the information needed to answer the user's message. Keep the query in the same language as the message.

User message: %s`

var searchQuerySchema = &llm.Schema{
	Name: "search_query",
	Properties: map[string]llm.SchemaProperty{
		"query": {Type: "string", Description: "the search query, at most 100 characters"},
	},
	Required: []string{"query"},
	Order:    []string{"query"},
}

const refineQueryPrompt = `The search query %q returned too few results. Write a broader alternative query likely to return more results, keeping the original intent and language.`

var refineQuerySchema = &llm.Schema{
	Name: "refined_query",
	Properties: map[string]llm.SchemaProperty{
		"query": {Type: "string", Description: "the broader replacement query"},
	},
	Required: []string{"query"},
	Order:    []string{"query"},
}

const dateExtractionPrompt = `Extract the publication date of this article from its title and excerpt. Answer with the date in YYYY-MM-DD format, or an empty string if no date can be determined.

Title: %s
Excerpt: %s`

var dateExtractionSchema = &llm.Schema{
	Name: "published_date",
	Properties: map[string]llm.SchemaProperty{
		"date": {Type: "string", Description: "publication date as YYYY-MM-DD, or empty"},
	},
	Required: []string{"date"},
	Order:    []string{"date"},
}

const classifySourcePrompt = `Classify this web source. A primary source reports information firsthand (official announcements, original research, direct statements, government or company pages). A secondary source reports on or summarizes other sources (news aggregators, encyclopedias, commentary).

Title: %s
URL: %s
Excerpt: %s`

var classifySourceSchema = &llm.Schema{
	Name: "source_classification",
	Properties: map[string]llm.SchemaProperty{
		"source_type": {Type: "string", Description: `"primary", "secondary" or "unknown"`},
	},
	Required: []string{"source_type"},
	Order:    []string{"source_type"},
}

const keyPointsPrompt = `Summarize the key points of this source in 3 to 5 short bullet lines, in the language of the excerpt.

Title: %s
URL: %s
Excerpt: %s`

const searchAnswerPrompt = `Use the following search results to answer the user's message. Cite sources inline with bracketed numbers like [1] that refer to the numbered results. Prefer primary sources and more recent publication dates when results disagree. If the results do not contain the answer, say so.

Search results:
%s`

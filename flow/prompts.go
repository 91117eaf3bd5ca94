package flow

import (
	"fmt"
	"strings"

	"github.com/poiesic/inquiro/core"
)

// formatHistory flattens chat history into "Sender: message" lines for
// prompt context.
func formatHistory(turns []core.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, turn.Sender.String()+": "+turn.Message)
	}
	return strings.Join(lines, "\n")
}

func buildAmbiguityPrompt(conversation, question string) string {
	return fmt.Sprintf(
		"Based on the conversation history below:\n%s\n\n"+
			"Is the current question ambiguous? Respond ONLY with 'yes' or 'no'.\n"+
			"Current question: %s",
		conversation, question)
}

func buildClarifyPrompt(conversation, question string) string {
	return fmt.Sprintf(
		"Conversation so far:\n%s\n\n"+
			"The user originally asked: %q\n"+
			"Generate a follow-up clarification question in bullet points asking the user to specify their intent.",
		conversation, question)
}

func buildFoldPrompt(conversation, original, clarification string) string {
	return fmt.Sprintf(
		"Conversation history:\n%s\n\n"+
			"Original question: %q\n"+
			"Clarification provided: %q\n"+
			"Based on this, provide a clarified version of the question that best captures the intended meaning. Keep it concise.",
		conversation, original, clarification)
}

func buildRefinePrompt(conversation, question string) string {
	return fmt.Sprintf(
		"Conversation so far:\n%s\n\n"+
			"Refine the following query for clarity based on the conversation: '%s'",
		conversation, question)
}

func buildGradePrompt(conversation, query, sample string) string {
	return fmt.Sprintf(
		"Conversation history:\n%s\n\n"+
			"Does the following content sufficiently answer the query '%s'? "+
			"Respond ONLY with 'yes' or 'no'.\nContent: %s",
		conversation, query, sample)
}

func buildRerankPrompt(conversation, query, summaries string) string {
	return fmt.Sprintf(
		"Conversation history:\n%s\n\n"+
			"Based on the conversation history and the query '%s', rank these documents by relevance. "+
			"Return the indices of the top 3 documents as comma-separated numbers.\nDocuments:\n%s",
		conversation, query, summaries)
}

func buildAnswerPrompt(conversation, query, sourceLabel, content string) string {
	return fmt.Sprintf(
		"Conversation history:\n%s\n\n"+
			"Generate a concise 1-2 sentence answer for the query: '%s'. "+
			"Use the following content from %s:\n%s\n"+
			"Include the source in parentheses at the end.",
		conversation, query, sourceLabel, content)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"map-action-api/models"
)

// FallbackReply is returned verbatim whenever the chat-completion call
// fails. The conversation still records the user's turn.
const FallbackReply = "Désolé, je ne peux pas traiter votre demande pour le moment."

// ChatCompleter is the chat-completion boundary; *openai.Client
// satisfies it. Single attempt, no retries.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatHistoryStore persists per-session conversation history.
type ChatHistoryStore interface {
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error
}

// ChatService answers follow-up questions about an analyzed incident,
// grounding the model with the incident context and the stored session
// history.
type ChatService struct {
	client ChatCompleter
	store  ChatHistoryStore
	model  string
}

// NewChatService wires the chat service.
func NewChatService(client ChatCompleter, store ChatHistoryStore, model string) *ChatService {
	return &ChatService{client: client, store: store, model: model}
}

// Reply sends the session history plus the user's prompt to the model,
// with a system message built from the incident context JSON. Model
// failures are non-fatal: the fixed French fallback is returned and the
// exchange is still recorded in the session.
func (s *ChatService) Reply(ctx context.Context, sessionID, prompt, contextJSON string) string {
	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		log.Printf("chat: loading history for session %s failed: %v", sessionID, err)
		history = nil
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemMessage(contextJSON),
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	response := FallbackReply
	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            s.model,
		Messages:         messages,
		Temperature:      0.5,
		MaxTokens:        1080,
		TopP:             0.8,
		FrequencyPenalty: 0.3,
		PresencePenalty:  0.0,
	})
	switch {
	case err != nil:
		log.Printf("chat: completion failed for session %s: %v", sessionID, err)
	case len(completion.Choices) == 0:
		log.Printf("chat: completion returned no choices for session %s", sessionID)
	default:
		response = completion.Choices[0].Message.Content
	}

	if err := s.store.Append(ctx, sessionID,
		models.ChatMessage{Role: models.RoleUser, Content: prompt},
		models.ChatMessage{Role: models.RoleAssistant, Content: response},
	); err != nil {
		log.Printf("chat: saving history for session %s failed: %v", sessionID, err)
	}
	return response
}

// buildSystemMessage renders the assistant instructions from the
// incident context the mobile app supplied. Missing or malformed
// context falls back to neutral placeholders rather than failing the
// conversation.
func buildSystemMessage(contextJSON string) string {
	incident := models.IncidentContext{
		TypeIncident:  "Inconnu",
		Analysis:      "Non spécifié",
		PisteSolution: "Non spécifié",
	}
	if contextJSON != "" {
		var parsed models.IncidentContext
		if err := json.Unmarshal([]byte(contextJSON), &parsed); err != nil {
			log.Printf("chat: invalid incident context, using defaults: %v", err)
		} else {
			if parsed.TypeIncident != "" {
				incident.TypeIncident = parsed.TypeIncident
			}
			if parsed.Analysis != "" {
				incident.Analysis = parsed.Analysis
			}
			if parsed.PisteSolution != "" {
				incident.PisteSolution = parsed.PisteSolution
			}
		}
	}

	return fmt.Sprintf(`<system>
    <role>assistant AI</role>
    <task>analyse des incidents environnementaux</task>
    <location>Mali</location>
    <incident>
        <type>%s</type>
        <analysis>%s</analysis>
        <solution_tracks>%s</solution_tracks>
    </incident>
    <instructions>
        <instruction>Adaptez vos réponses au contexte spécifique de l'incident.</instruction>
        <instruction>Utilisez les informations de contexte pour enrichir vos explications.</instruction>
        <instruction>Si la question dépasse le contexte fourni, mentionnez clairement que vous répondez de manière générale.</instruction>
        <instruction>Priorisez les réponses concises et orientées sur la résolution du problème.</instruction>
        <instruction>Ne déviez pas de la tâche principale et évitez les réponses non pertinentes.</instruction>
        <response_formatting>
            <formatting_rule>Répondez de manière concise, avec une longueur de réponse idéale de 2 à 3 phrases.</formatting_rule>
            <formatting_rule>Fournissez une réponse structurée : commencez par le problème principal, suivez avec la solution proposée.</formatting_rule>
            <formatting_rule>Utilisez des mots simples et clairs, évitez le jargon technique inutile.</formatting_rule>
            <formatting_rule>Donnez des informations essentielles en utilisant un langage direct et précis.</formatting_rule>
            <formatting_rule>Si une recommandation est faite, assurez-vous qu'elle est faisable et contextualisée.</formatting_rule>
        </response_formatting>
    </instructions>
</system>`, incident.TypeIncident, incident.Analysis, incident.PisteSolution)
}

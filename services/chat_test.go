package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"map-action-api/models"
)

type stubCompleter struct {
	reply  string
	err    error
	gotReq openai.ChatCompletionRequest
	called int
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.called++
	s.gotReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.reply}},
		},
	}, nil
}

type memChatStore struct {
	sessions map[string][]models.ChatMessage
}

func newMemChatStore() *memChatStore {
	return &memChatStore{sessions: map[string][]models.ChatMessage{}}
}

func (m *memChatStore) History(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	return m.sessions[sessionID], nil
}

func (m *memChatStore) Append(_ context.Context, sessionID string, messages ...models.ChatMessage) error {
	m.sessions[sessionID] = append(m.sessions[sessionID], messages...)
	return nil
}

const testContext = `{"type_incident": "Déforestation", "analysis": "Perte de couverture arborée.", "piste_solution": "Reforestation."}`

func TestReplySuccess(t *testing.T) {
	completer := &stubCompleter{reply: "La reforestation est recommandée."}
	store := newMemChatStore()
	svc := NewChatService(completer, store, "gpt-4o-mini")

	got := svc.Reply(context.Background(), "session-1", "Que faire ?", testContext)
	if got != "La reforestation est recommandée." {
		t.Errorf("reply = %q", got)
	}
	if completer.called != 1 {
		t.Errorf("completion called %d times, want exactly 1", completer.called)
	}

	history := store.sessions["session-1"]
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != models.RoleUser || history[0].Content != "Que faire ?" {
		t.Errorf("first stored turn = %+v, want the user prompt", history[0])
	}
	if history[1].Role != models.RoleAssistant {
		t.Errorf("second stored turn role = %q, want assistant", history[1].Role)
	}
}

func TestReplySystemMessageCarriesContext(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc := NewChatService(completer, newMemChatStore(), "gpt-4o-mini")

	svc.Reply(context.Background(), "s", "question", testContext)

	if len(completer.gotReq.Messages) < 2 {
		t.Fatalf("request has %d messages, want system + user", len(completer.gotReq.Messages))
	}
	system := completer.gotReq.Messages[0]
	if system.Role != openai.ChatMessageRoleSystem {
		t.Fatalf("first message role = %q, want system", system.Role)
	}
	for _, fragment := range []string{"Déforestation", "Perte de couverture arborée.", "Reforestation."} {
		if !strings.Contains(system.Content, fragment) {
			t.Errorf("system message missing context fragment %q", fragment)
		}
	}
	last := completer.gotReq.Messages[len(completer.gotReq.Messages)-1]
	if last.Role != openai.ChatMessageRoleUser || last.Content != "question" {
		t.Errorf("last message = %+v, want the user prompt", last)
	}
}

func TestReplyIncludesSessionHistory(t *testing.T) {
	completer := &stubCompleter{reply: "suite"}
	store := newMemChatStore()
	store.sessions["s"] = []models.ChatMessage{
		{Role: models.RoleUser, Content: "premier message"},
		{Role: models.RoleAssistant, Content: "première réponse"},
	}
	svc := NewChatService(completer, store, "gpt-4o-mini")

	svc.Reply(context.Background(), "s", "deuxième message", "")

	if len(completer.gotReq.Messages) != 4 {
		t.Fatalf("request has %d messages, want system + 2 history + user", len(completer.gotReq.Messages))
	}
	if completer.gotReq.Messages[1].Content != "premier message" {
		t.Errorf("history not forwarded in order: %+v", completer.gotReq.Messages[1])
	}
}

func TestReplyFailureReturnsFallbackAndRecordsTurn(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limited")}
	store := newMemChatStore()
	svc := NewChatService(completer, store, "gpt-4o-mini")

	got := svc.Reply(context.Background(), "s", "Que faire ?", testContext)
	if got != FallbackReply {
		t.Errorf("reply = %q, want the fixed fallback", got)
	}

	history := store.sessions["s"]
	if len(history) != 2 {
		t.Fatalf("history length = %d, want the user turn and the fallback recorded", len(history))
	}
	if history[0].Content != "Que faire ?" {
		t.Errorf("user turn not recorded: %+v", history[0])
	}
	if history[1].Content != FallbackReply {
		t.Errorf("fallback not recorded: %+v", history[1])
	}
}

func TestReplyMalformedContextUsesDefaults(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc := NewChatService(completer, newMemChatStore(), "gpt-4o-mini")

	svc.Reply(context.Background(), "s", "question", "{not json")

	system := completer.gotReq.Messages[0].Content
	if !strings.Contains(system, "Inconnu") || !strings.Contains(system, "Non spécifié") {
		t.Errorf("malformed context should fall back to defaults:\n%s", system)
	}
}

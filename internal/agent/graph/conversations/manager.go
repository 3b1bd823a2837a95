// Package conversations turns stored session transcripts into classifier
// context and records finished turns.
package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/skillsage/server/internal/agent/model"
)

const defaultMaxTurns = 6

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	maxTurns := config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         maxTurns,
	}
}

// LoadRecent returns the last maxTurns messages of a session.
func (cm *MessagesManager) LoadRecent(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	if cm == nil || cm.conversationRepo == nil || sessionID == "" {
		return nil, nil
	}
	history, err := cm.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return trimTail(history.Messages, cm.maxTurns), nil
}

// BuildContext renders prior turns for the intent prompt. It returns "" when
// there is nothing to show.
func BuildContext(messages []*schema.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			b.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "<conversation_context>\n" + b.String() + "</conversation_context>"
}

// SaveTurn appends the query and its answer to the session transcript.
func (cm *MessagesManager) SaveTurn(ctx context.Context, sessionID, query, answer string) error {
	if cm == nil || cm.conversationRepo == nil || sessionID == "" {
		return nil
	}
	if err := cm.conversationRepo.AddMessage(ctx, sessionID, schema.UserMessage(query)); err != nil {
		return err
	}
	return cm.conversationRepo.AddMessage(ctx, sessionID, schema.AssistantMessage(answer, nil))
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}

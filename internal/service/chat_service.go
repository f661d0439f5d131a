package service

import (
	"context"
	"errors"

	"learnstudio/internal/llm"
	"learnstudio/internal/metrics"
	"learnstudio/internal/model"
)

const tutorPrompt = `You are the learning assistant of a 120-day AI/ML internship program.
Teach the Socratic way: answer a question with a guiding question or a hint before giving
the full solution, and ask the intern what they have already tried.

The curriculum runs in six blocks of twenty days:
- Days 1-20: Python fundamentals, data structures, OOP, NumPy, Pandas
- Days 21-40: FastAPI and backend development, REST, JWT auth, MongoDB, async
- Days 41-60: Machine learning with scikit-learn, supervised and unsupervised models, evaluation
- Days 61-80: Deep learning with TensorFlow and PyTorch, CNNs, RNNs, transfer learning
- Days 81-100: RAG and production AI, LangChain, vector databases, LLMs, MLOps
- Days 101-120: Capstone project, system design, CI/CD, documentation

Keep answers short and encouraging. Put code in fenced blocks tagged with the language.
Break long explanations into numbered steps. If you are not sure, say so and suggest
asking a mentor.`

// Completer produces an assistant reply for a conversation
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, messages []model.ChatMessage) (string, error)
}

// ChatService forwards tutoring conversations to the chat provider
type ChatService interface {
	Reply(ctx context.Context, req model.ChatRequest) (string, error)
}

type chatService struct {
	completer Completer
	metrics   *metrics.Metrics
}

// NewChatService creates a ChatService. A nil completer means chat is not configured.
func NewChatService(completer Completer, m *metrics.Metrics) ChatService {
	return &chatService{completer: completer, metrics: m}
}

// Reply sends the last MaxChatHistory turns plus the new message after the tutor prompt
func (s *chatService) Reply(ctx context.Context, req model.ChatRequest) (string, error) {
	if s.completer == nil {
		return "", ErrChatNotConfigured
	}

	history := req.History
	if len(history) > model.MaxChatHistory {
		history = history[len(history)-model.MaxChatHistory:]
	}
	messages := make([]model.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, model.ChatMessage{Role: model.ChatRoleUser, Content: req.Message})

	reply, err := s.completer.Complete(ctx, tutorPrompt, messages)
	if err != nil {
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			s.metrics.ChatOutcome(perr.Kind)
		} else {
			s.metrics.ChatOutcome(llm.KindService)
		}
		return "", err
	}
	s.metrics.ChatOutcome("ok")
	return reply, nil
}

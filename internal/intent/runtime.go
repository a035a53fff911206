package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

const (
	defaultAppName = "zapbot"
	defaultUserID  = "zapbot-user"
)

// ADKConfig configures an ADKRuntime.
type ADKConfig struct {
	Agent          agent.Agent     // Required
	AppName        string          // Defaults to "zapbot"
	UserID         string          // Owner of the per-run sessions
	SessionService session.Service // Defaults to an in-memory service
	Logger         logger.Logger   // Required
}

// ADKRuntime runs an ADK agent with a fresh session per call, so no
// conversation state is carried from one input to the next.
type ADKRuntime struct {
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	userID         string
	log            logger.Logger
}

var _ Runtime = (*ADKRuntime)(nil)

// NewADKRuntime creates an ADKRuntime.
func NewADKRuntime(cfg ADKConfig) (*ADKRuntime, error) {
	if cfg.Agent == nil {
		return nil, fmt.Errorf("agent is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.UserID == "" {
		cfg.UserID = defaultUserID
	}
	if cfg.SessionService == nil {
		cfg.SessionService = session.InMemoryService()
	}

	r, err := runner.New(runner.Config{
		AppName:        cfg.AppName,
		Agent:          cfg.Agent,
		SessionService: cfg.SessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &ADKRuntime{
		runner:         r,
		sessionService: cfg.SessionService,
		appName:        cfg.AppName,
		userID:         cfg.UserID,
		log:            cfg.Logger.WithFields(logger.StringField("component", "adk_runtime")),
	}, nil
}

// Run sends input to the agent and returns the text of its final response.
func (r *ADKRuntime) Run(ctx context.Context, input string) (string, error) {
	sessionID := uuid.NewString()
	log := logger.GetLoggerFromContext(ctx, r.log).WithFields(logger.StringField("session_id", sessionID))

	if _, err := r.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   r.appName,
		UserID:    r.userID,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer r.deleteSession(sessionID, log)

	content := genai.NewContentFromText(input, genai.RoleUser)
	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var final string
	for event, err := range r.runner.Run(ctx, r.userID, sessionID, content, runConfig) {
		if err != nil {
			return "", fmt.Errorf("failed to execute agent: %w", err)
		}
		if event == nil {
			continue
		}
		if event.ErrorMessage != "" {
			return "", fmt.Errorf("agent error [%s]: %s", event.ErrorCode, event.ErrorMessage)
		}
		logFunctionParts(log, event)
		if event.IsFinalResponse() && !event.Partial {
			final = eventText(event)
		}
	}

	if final == "" {
		log.Warn("Agent finished without a text response")
	}
	return final, nil
}

// deleteSession drops the per-run session. A failure only leaks memory.
func (r *ADKRuntime) deleteSession(sessionID string, log logger.Logger) {
	err := r.sessionService.Delete(context.Background(), &session.DeleteRequest{
		AppName:   r.appName,
		UserID:    r.userID,
		SessionID: sessionID,
	})
	if err != nil {
		log.Warn("Failed to delete session", logger.ErrorField(err))
	}
}

func eventText(event *session.Event) string {
	if event.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range event.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func logFunctionParts(log logger.Logger, event *session.Event) {
	if event.Content == nil {
		return
	}
	for _, part := range event.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			log.Debug("Agent requested tool", logger.StringField("tool", part.FunctionCall.Name))
		}
		if part.FunctionResponse != nil {
			log.Debug("Tool returned", logger.StringField("tool", part.FunctionResponse.Name))
		}
	}
}

package interview

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/llm/llmjson"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/talent"
)

const maxMessageRunes = 4000

// ProfileLookup resolves the caller's talent profile.
type ProfileLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (talent.Profile, error)
}

// TranscriptSink receives transcripts of interviews that were closed or reset.
type TranscriptSink interface {
	SaveTranscript(ctx context.Context, userID uuid.UUID, iv Interview, msgs []Message) error
}

// ExtractionStarter is the start phase of the extraction pipeline.
type ExtractionStarter interface {
	Start(ctx context.Context, userID, interviewID uuid.UUID) error
}

// Reply is the assistant turn returned to the client.
type Reply struct {
	Message     Message   `json:"message"`
	InterviewID uuid.UUID `json:"interviewId"`
	IsFinished  bool      `json:"isFinished"`
}

type SessionManager struct {
	repo        Repository
	profiles    ProfileLookup
	model       llm.ChatModel
	extraction  ExtractionStarter
	transcripts TranscriptSink
	log         *logger.Logger
	now         func() time.Time
}

func NewSessionManager(repo Repository, profiles ProfileLookup, model llm.ChatModel, extraction ExtractionStarter, transcripts TranscriptSink, log *logger.Logger) *SessionManager {
	return &SessionManager{
		repo:        repo,
		profiles:    profiles,
		model:       model,
		extraction:  extraction,
		transcripts: transcripts,
		log:         log.With("component", "InterviewSession"),
		now:         time.Now,
	}
}

// History returns the transcript of the caller's IN_PROGRESS interview, or an
// empty list when there is none.
func (s *SessionManager) History(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	iv, err := s.repo.GetInProgress(ctx, profile.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, iv.ID)
}

// PostMessage stores the user's answer, asks the model for the next question
// and stores the reply. When the model closes the interview, extraction is
// started without waiting for it.
func (s *SessionManager) PostMessage(ctx context.Context, userID uuid.UUID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, apperr.Validation("message must not be empty")
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return Reply{}, apperr.Validation("message must be at most %d characters", maxMessageRunes)
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	iv, err := s.repo.FindOrCreateInProgress(ctx, profile.ID)
	if err != nil {
		return Reply{}, err
	}
	if iv.ExtractionStatus == ExtractionProcessing {
		return Reply{}, apperr.Conflict("interview is being analyzed, please wait")
	}
	log := s.log.With("interview_id", iv.ID)

	if _, err := s.repo.AppendMessage(ctx, Message{InterviewID: iv.ID, Role: llm.RoleUser, Content: text}); err != nil {
		return Reply{}, err
	}
	transcript, err := s.repo.ListMessages(ctx, iv.ID)
	if err != nil {
		return Reply{}, err
	}
	userTurns := countUserTurns(transcript)

	raw, err := s.model.Complete(ctx, interviewerPrompt(userTurns), toHistory(transcript))
	if err != nil {
		log.Warn("Interviewer completion failed", "error", err)
		return Reply{}, err
	}

	var turn struct {
		NextQuestion string `json:"nextQuestion"`
		IsFinished   bool   `json:"isFinished"`
	}
	parseErr := llmjson.Decode(raw, &turn)
	if parseErr == nil && strings.TrimSpace(turn.NextQuestion) == "" {
		parseErr = apperr.UpstreamFormat("AI response could not be parsed", errors.New("empty nextQuestion"))
	}
	if parseErr != nil {
		// keep the conversation intact even when the reply is unusable
		content := strings.TrimSpace(raw)
		if content == "" {
			content = fallbackAssistantReply
		}
		if _, err := s.repo.AppendMessage(ctx, Message{InterviewID: iv.ID, Role: llm.RoleAssistant, Content: content}); err != nil {
			log.Error("Failed to store fallback reply", "error", err)
		}
		log.Warn("Interviewer reply was not valid JSON", "error", parseErr)
		return Reply{}, parseErr
	}

	finished := turn.IsFinished || userTurns >= maxUserTurns
	msg, err := s.repo.AppendMessage(ctx, Message{InterviewID: iv.ID, Role: llm.RoleAssistant, Content: strings.TrimSpace(turn.NextQuestion)})
	if err != nil {
		return Reply{}, err
	}

	if finished {
		log.Info("Interview finished", "user_turns", userTurns)
		if err := s.extraction.Start(ctx, userID, iv.ID); err != nil {
			// the client can retry through the start endpoint
			log.Error("Failed to start extraction", "error", err)
		}
		s.saveTranscript(ctx, userID, iv, append(transcript, msg))
	}
	return Reply{Message: msg, InterviewID: iv.ID, IsFinished: finished}, nil
}

// Reset archives the caller's IN_PROGRESS interview. Messages are kept.
func (s *SessionManager) Reset(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	iv, err := s.repo.GetInProgress(ctx, profile.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Archive(ctx, iv.ID); err != nil {
		return err
	}
	s.log.Info("Interview archived", "interview_id", iv.ID)
	if msgs, err := s.repo.ListMessages(ctx, iv.ID); err == nil {
		iv.Status = StatusArchived
		s.saveTranscript(ctx, userID, iv, msgs)
	}
	return nil
}

func (s *SessionManager) saveTranscript(ctx context.Context, userID uuid.UUID, iv Interview, msgs []Message) {
	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.SaveTranscript(ctx, userID, iv, msgs); err != nil {
		s.log.Warn("Transcript mirror failed", "interview_id", iv.ID, "error", err)
	}
}

func countUserTurns(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == llm.RoleUser {
			n++
		}
	}
	return n
}

func toHistory(msgs []Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

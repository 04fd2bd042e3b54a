package interview_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/interview"
	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/repository/memory"
	"github.com/artem13815/career/pkg/talent"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []jobs.Task
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, t jobs.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, t)
	return nil
}

func (d *recordingDispatcher) Tasks() []jobs.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]jobs.Task(nil), d.tasks...)
}

type transcriptLog struct {
	mu    sync.Mutex
	saved map[uuid.UUID]int
}

func (l *transcriptLog) SaveTranscript(_ context.Context, _ uuid.UUID, iv interview.Interview, msgs []interview.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saved == nil {
		l.saved = map[uuid.UUID]int{}
	}
	l.saved[iv.ID] = len(msgs)
	return nil
}

// interviewer asks numbered questions and finishes once the user has answered
// finishAt times; finishAt 0 never finishes.
func interviewer(finishAt int) llm.Func {
	return func(_ context.Context, _ string, history []llm.Message) (string, error) {
		n := 0
		for _, m := range history {
			if m.Role == llm.RoleUser {
				n++
			}
		}
		return fmt.Sprintf(`{"nextQuestion":"question %d","isFinished":%t}`, n+1, finishAt > 0 && n >= finishAt), nil
	}
}

func fixed(reply string) llm.Func {
	return func(context.Context, string, []llm.Message) (string, error) { return reply, nil }
}

const skillsReply = "```json\n" + `{"skills":[
  {"skillName":"Go","level":"4/5","category":"technical-skill"},
  {"skillName":"golang","level":2,"category":"technical-skill"},
  {"skillName":"Mentoring","level":3,"category":"leadership"},
  {"skillName":"Team lead","level":null,"category":"role-experience"}
]}` + "\n```"

type env struct {
	userID      uuid.UUID
	profile     talent.Profile
	talents     *memory.Talents
	interviews  *memory.Interviews
	dispatcher  *recordingDispatcher
	transcripts *transcriptLog
	session     *interview.SessionManager
	extraction  *interview.Extraction
	extractor   llm.ChatModel
}

func newEnv(t *testing.T, chat, extractor llm.ChatModel) *env {
	t.Helper()
	e := &env{
		userID:      uuid.New(),
		talents:     memory.NewTalents(),
		interviews:  memory.NewInterviews(),
		dispatcher:  &recordingDispatcher{},
		transcripts: &transcriptLog{},
		extractor:   extractor,
	}
	p, err := e.talents.Save(context.Background(), talent.Profile{
		ID:         uuid.New(),
		UserID:     e.userID,
		TalentType: talent.TypeProfessional,
		Skills:     []string{"Python"},
	})
	require.NoError(t, err)
	e.profile = p

	talents := talent.NewService(e.talents, nil, logger.Nop())
	e.extraction = interview.NewExtraction(e.interviews, e.talents, talents, extractor, e.dispatcher, logger.Nop(), 10*time.Minute)
	e.session = interview.NewSessionManager(e.interviews, e.talents, chat, e.extraction, e.transcripts, logger.Nop())
	return e
}

// runDispatched executes every dispatched extraction task.
func (e *env) runDispatched(t *testing.T) {
	t.Helper()
	for _, task := range e.dispatcher.Tasks() {
		require.Equal(t, jobs.KindExtraction, task.Kind)
		require.NoError(t, e.extraction.HandleTask(context.Background(), task))
	}
}

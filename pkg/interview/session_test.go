package interview_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/interview"
	"github.com/artem13815/career/pkg/llm"
)

func TestHappyPathInterview(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(6), fixed(skillsReply))

	var ivID uuid.UUID
	for i := 1; i <= 6; i++ {
		reply, err := e.session.PostMessage(ctx, e.userID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
		assert.Equal(t, i == 6, reply.IsFinished, "turn %d", i)
		assert.Equal(t, llm.RoleAssistant, reply.Message.Role)
		ivID = reply.InterviewID
	}

	require.Len(t, e.dispatcher.Tasks(), 1)
	st, err := e.extraction.Status(ctx, e.userID, ivID)
	require.NoError(t, err)
	assert.Equal(t, interview.ExtractionProcessing, st.ExtractionStatus)

	e.runDispatched(t)

	st, err = e.extraction.Status(ctx, e.userID, ivID)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusCompleted, st.Status)
	assert.Equal(t, interview.ExtractionCompleted, st.ExtractionStatus)
	assert.Nil(t, st.ExtractionError)

	skills, err := e.extraction.ListSkills(ctx, e.userID, ivID)
	require.NoError(t, err)
	assert.NotEmpty(t, skills)
	assert.Equal(t, 12, e.transcripts.saved[ivID], "finished transcript mirrored")
}

func TestHistoryIsOrdered(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(0), fixed(skillsReply))

	hist, err := e.session.History(ctx, e.userID)
	require.NoError(t, err)
	assert.Empty(t, hist)

	for i := 0; i < 3; i++ {
		_, err := e.session.PostMessage(ctx, e.userID, fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}
	hist, err = e.session.History(ctx, e.userID)
	require.NoError(t, err)
	require.Len(t, hist, 6)
	for i, m := range hist {
		assert.Equal(t, int64(i+1), m.Seq)
		want := llm.RoleUser
		if i%2 == 1 {
			want = llm.RoleAssistant
		}
		assert.Equal(t, want, m.Role)
	}
}

func TestHistoryWithoutProfile(t *testing.T) {
	e := newEnv(t, interviewer(0), fixed(skillsReply))
	hist, err := e.session.History(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestPostMessageValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(0), fixed(skillsReply))

	_, err := e.session.PostMessage(ctx, e.userID, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.session.PostMessage(ctx, e.userID, strings.Repeat("я", 4001))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.session.PostMessage(ctx, uuid.New(), "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMalformedInterviewerReplyKeepsConversation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, fixed("Sure! Tell me more about yourself."), fixed(skillsReply))

	_, err := e.session.PostMessage(ctx, e.userID, "hello")
	require.ErrorIs(t, err, apperr.ErrUpstreamFormat)

	hist, err := e.session.History(ctx, e.userID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "Sure! Tell me more about yourself.", hist[1].Content)
}

func TestInterviewForcedToFinish(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(0), fixed(skillsReply))

	var last interview.Reply
	for i := 1; i <= 12; i++ {
		var err error
		last, err = e.session.PostMessage(ctx, e.userID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
		if i < 12 {
			require.False(t, last.IsFinished)
		}
	}
	assert.True(t, last.IsFinished)
	assert.Len(t, e.dispatcher.Tasks(), 1)
}

func TestPostMessageRejectedWhileExtracting(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(1), fixed(skillsReply))

	reply, err := e.session.PostMessage(ctx, e.userID, "I write Go")
	require.NoError(t, err)
	require.True(t, reply.IsFinished)

	_, err = e.session.PostMessage(ctx, e.userID, "one more thing")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestResetKeepsArchivedHistory(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(0), fixed(skillsReply))

	first, err := e.session.PostMessage(ctx, e.userID, "answer")
	require.NoError(t, err)

	require.NoError(t, e.session.Reset(ctx, e.userID))

	hist, err := e.session.History(ctx, e.userID)
	require.NoError(t, err)
	assert.Empty(t, hist)

	archived, err := e.interviews.Get(ctx, first.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusArchived, archived.Status)
	msgs, err := e.interviews.ListMessages(ctx, first.InterviewID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, 2, e.transcripts.saved[first.InterviewID])

	next, err := e.session.PostMessage(ctx, e.userID, "fresh start")
	require.NoError(t, err)
	assert.NotEqual(t, first.InterviewID, next.InterviewID)

	// nothing to reset is not an error
	require.NoError(t, e.session.Reset(ctx, uuid.New()))
}

func TestConcurrentMessagesShareOneInterview(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, interviewer(0), fixed(skillsReply))

	const n = 8
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reply, err := e.session.PostMessage(ctx, e.userID, fmt.Sprintf("answer %d", i))
			assert.NoError(t, err)
			ids[i] = reply.InterviewID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	msgs, err := e.interviews.ListMessages(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, msgs, 2*n)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
	}
}

package legacy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/docstore"
	"github.com/artem13815/career/pkg/interview"
)

type transcriptEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type transcript struct {
	InterviewID uuid.UUID         `json:"interviewId"`
	Status      string            `json:"status"`
	Messages    []transcriptEntry `json:"messages"`
	SavedAt     time.Time         `json:"savedAt"`
}

type transcriptDoc struct {
	Interviews []transcript `json:"interviews"`
}

// Transcripts mirrors finished and archived interviews into skill-interviews.
type Transcripts struct {
	store    docstore.Store
	provider string
	now      func() time.Time
}

func NewTranscripts(store docstore.Store, provider string) *Transcripts {
	return &Transcripts{store: store, provider: provider, now: time.Now}
}

var _ interview.TranscriptSink = (*Transcripts)(nil)

// SaveTranscript replaces the entry of iv in the user's document, appending
// it when new.
func (t *Transcripts) SaveTranscript(ctx context.Context, userID uuid.UUID, iv interview.Interview, msgs []interview.Message) error {
	name := docstore.Key(t.provider, userID)
	var doc transcriptDoc
	if err := docstore.GetJSON(ctx, t.store, docstore.ContainerInterviews, name, &doc); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	entry := transcript{
		InterviewID: iv.ID,
		Status:      string(iv.Status),
		Messages:    make([]transcriptEntry, 0, len(msgs)),
		SavedAt:     t.now().UTC(),
	}
	for _, m := range msgs {
		entry.Messages = append(entry.Messages, transcriptEntry{Role: string(m.Role), Content: m.Content, CreatedAt: m.CreatedAt})
	}
	replaced := false
	for i := range doc.Interviews {
		if doc.Interviews[i].InterviewID == iv.ID {
			doc.Interviews[i] = entry
			replaced = true
		}
	}
	if !replaced {
		doc.Interviews = append(doc.Interviews, entry)
	}
	return docstore.PutJSON(ctx, t.store, docstore.ContainerInterviews, name, doc)
}

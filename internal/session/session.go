// Package session holds the active per-user bundle: current dataset,
// retrieval index, and conversation. The bundle is replaced wholesale
// on every load or reset, never mutated in place.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"csvchat/internal/analyzer"
	"csvchat/internal/answer"
	"csvchat/internal/dataset"
	"csvchat/internal/domain"
	"csvchat/internal/formatter"
	"csvchat/internal/index"
	"csvchat/internal/synthesizer"
)

// Fixed user-facing replies.
const (
	MsgUploadFirst = "Please upload a CSV file first"
	MsgLoadFailed  = "Failed to process file. Please try another CSV."
	msgLoadedIntro = "Data loaded successfully!"
)

type bundle struct {
	dataset  *domain.Dataset
	summary  *domain.DatasetSummary
	chunks   []domain.DocumentChunk
	answerer *answer.Generator
}

// Session is the single-user interaction state. All operations are
// synchronous; each question completes its full embed-search-generate-
// format chain before the next is accepted.
type Session struct {
	id           string
	log          *zap.Logger
	newEmbedder  func() domain.Embedder
	newStore     func() domain.VectorStore
	model        domain.Generator
	topK         int
	bundle       *bundle
	conversation []domain.Message
}

// New creates an empty session. The embedder and store factories supply
// fresh instances per load so a rebuilt index never shares state with a
// previous one.
func New(newEmbedder func() domain.Embedder, newStore func() domain.VectorStore, model domain.Generator, topK int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:          id,
		log:         log.With(zap.String("session", id)),
		newEmbedder: newEmbedder,
		newStore:    newStore,
		model:       model,
		topK:        topK,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// LoadFile ingests the CSV at path. See Load.
func (s *Session) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrDataLoad, err)
		s.failLoad(err)
		return err
	}
	defer f.Close()
	return s.Load(f)
}

// Load runs the full build phase: ingest, analyze, synthesize chunks,
// build the retrieval index, and start a fresh conversation with the
// dataset overview. A failure at any step leaves the session usable
// with no dataset and a fixed failure message as the only turn.
func (s *Session) Load(r io.Reader) error {
	ds, err := dataset.Load(r)
	if err != nil {
		s.failLoad(err)
		return err
	}
	summary, err := analyzer.Analyze(ds)
	if err != nil {
		s.failLoad(err)
		return err
	}
	chunks := synthesizer.Synthesize(ds, summary)
	ix := index.New(s.newEmbedder(), s.newStore(), s.log)
	if err := ix.Build(chunks); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrDataLoad, err)
		s.failLoad(err)
		return err
	}

	s.bundle = &bundle{
		dataset:  ds,
		summary:  summary,
		chunks:   chunks,
		answerer: answer.New(ix, s.model, s.topK),
	}
	s.conversation = []domain.Message{{
		Role:    domain.RoleAssistant,
		Content: msgLoadedIntro + "\n\n" + synthesizer.Overview(summary),
	}}
	s.log.Info("dataset loaded",
		zap.Int("rows", summary.Metadata.Rows),
		zap.Int("columns", summary.Metadata.Cols),
		zap.Int("chunks", len(chunks)))
	return nil
}

func (s *Session) failLoad(err error) {
	s.bundle = nil
	s.conversation = []domain.Message{{Role: domain.RoleAssistant, Content: MsgLoadFailed}}
	s.log.Warn("dataset load failed", zap.Error(err))
}

// Ask answers one question. Failures never escape: before any upload
// the reply is a fixed prompt to load a file, and a generation failure
// becomes a visible error turn while the session stays usable.
func (s *Session) Ask(question string) string {
	s.conversation = append(s.conversation, domain.Message{Role: domain.RoleUser, Content: question})

	var reply string
	switch {
	case s.bundle == nil:
		reply = MsgUploadFirst
	default:
		result, err := s.bundle.answerer.Answer(question)
		if err != nil {
			reply = "Error: " + err.Error()
			s.log.Warn("question failed", zap.Error(err))
		} else {
			reply = formatter.Format(&result, question)
		}
	}

	s.conversation = append(s.conversation, domain.Message{Role: domain.RoleAssistant, Content: reply})
	return reply
}

// Reset discards the dataset, index, and conversation completely.
func (s *Session) Reset() {
	s.bundle = nil
	s.conversation = nil
	s.log.Info("session reset")
}

// Loaded reports whether a dataset is currently active.
func (s *Session) Loaded() bool { return s.bundle != nil }

// Summary returns the active dataset summary, or nil.
func (s *Session) Summary() *domain.DatasetSummary {
	if s.bundle == nil {
		return nil
	}
	return s.bundle.summary
}

// ExportCSV writes the current table back out for diagnostics.
func (s *Session) ExportCSV(w io.Writer) error {
	if s.bundle == nil {
		return errors.New("no dataset loaded")
	}
	return dataset.Write(s.bundle.dataset, w)
}

// Transcript returns an ordered copy of the conversation.
func (s *Session) Transcript() []domain.Message {
	out := make([]domain.Message, len(s.conversation))
	copy(out, s.conversation)
	return out
}

// DumpTranscript writes the raw conversation for diagnostics, one
// "role: content" block per turn.
func (s *Session) DumpTranscript(w io.Writer) error {
	for _, turn := range s.conversation {
		if _, err := fmt.Fprintf(w, "%s: %s\n", turn.Role, turn.Content); err != nil {
			return err
		}
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/domain"
)

type fakeTranscript struct {
	uid       string
	history   []domain.ChatMessage
	appendErr error
}

func (t *fakeTranscript) UserID() string { return t.uid }
func (t *fakeTranscript) History() []domain.ChatMessage {
	return append([]domain.ChatMessage(nil), t.history...)
}
func (t *fakeTranscript) Append(msgs ...domain.ChatMessage) error {
	if t.appendErr != nil {
		return t.appendErr
	}
	t.history = append(t.history, msgs...)
	return nil
}

type fakeSommelier struct {
	reply       string
	gotQuery    string
	gotCellar   []domain.Wine
	gotHistory  []domain.ChatMessage
	label       *assistant.LabelFields
	labelErr    error
	gotMIMEType string
}

func (f *fakeSommelier) Converse(ctx context.Context, q string, c []domain.Wine, h []domain.ChatMessage) string {
	f.gotQuery, f.gotCellar, f.gotHistory = q, c, h
	return f.reply
}

func (f *fakeSommelier) ExtractLabel(ctx context.Context, img []byte, mime string) (*assistant.LabelFields, error) {
	f.gotMIMEType = mime
	return f.label, f.labelErr
}

func newSommelier(fs *fakeStore, a *fakeSommelier) *SommelierService {
	s := NewSommelierService(NewCellarService(fs), a)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSommelierService_ChatAppendsBothTurns(t *testing.T) {
	fs := &fakeStore{wines: []domain.Wine{wine("w1", "Pinot Noir", domain.Red, 2, 0)}}
	a := &fakeSommelier{reply: "Try the Pinot."}
	tr := &fakeTranscript{uid: "u1", history: []domain.ChatMessage{{Role: domain.RoleUser, Text: "hi"}, {Role: domain.RoleModel, Text: "hello"}}}

	reply, err := newSommelier(fs, a).Chat(context.Background(), tr, "  duck?  ")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Role != domain.RoleModel || reply.Text != "Try the Pinot." || reply.Timestamp != 1700000000000 {
		t.Fatalf("reply: %+v", reply)
	}
	if a.gotQuery != "duck?" || len(a.gotCellar) != 1 || len(a.gotHistory) != 2 {
		t.Fatalf("assistant saw q=%q cellar=%d history=%d", a.gotQuery, len(a.gotCellar), len(a.gotHistory))
	}
	if len(tr.history) != 4 || tr.history[2].Role != domain.RoleUser || tr.history[2].Text != "duck?" || tr.history[3] != reply {
		t.Fatalf("transcript: %+v", tr.history)
	}
}

func TestSommelierService_ChatErrors(t *testing.T) {
	a := &fakeSommelier{reply: "x"}
	svc := newSommelier(&fakeStore{}, a)

	if _, err := svc.Chat(context.Background(), &fakeTranscript{}, "q"); !errors.Is(err, ErrNoUser) {
		t.Fatalf("no user: %v", err)
	}
	if _, err := svc.Chat(context.Background(), &fakeTranscript{uid: "u1"}, " \n"); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("empty query: %v", err)
	}

	closed := errors.New("closed")
	if _, err := svc.Chat(context.Background(), &fakeTranscript{uid: "u1", appendErr: closed}, "q"); !errors.Is(err, closed) {
		t.Fatalf("append error should propagate: %v", err)
	}

	down := errors.New("down")
	svc = newSommelier(&fakeStore{listErr: down}, a)
	a.gotQuery = ""
	if _, err := svc.Chat(context.Background(), &fakeTranscript{uid: "u1"}, "q"); !errors.Is(err, down) || a.gotQuery != "" {
		t.Fatalf("store failure should stop before the assistant: %v", err)
	}
}

func TestSommelierService_ScanLabel(t *testing.T) {
	a := &fakeSommelier{label: &assistant.LabelFields{Name: "X"}}
	svc := newSommelier(&fakeStore{}, a)

	lf, err := svc.ScanLabel(context.Background(), "u1", []byte("img"), "image/png")
	if err != nil || lf.Name != "X" || a.gotMIMEType != "image/png" {
		t.Fatalf("ScanLabel: %+v %v", lf, err)
	}
	if _, err := svc.ScanLabel(context.Background(), "", nil, ""); !errors.Is(err, ErrNoUser) {
		t.Fatalf("no user: %v", err)
	}
}

func TestWriteError(t *testing.T) {
	inner := errors.New("boom")
	err := &WriteError{Op: "update", Err: inner}
	if err.Error() != "cellar update failed: boom" || !errors.Is(err, inner) {
		t.Fatalf("WriteError: %v", err)
	}
}

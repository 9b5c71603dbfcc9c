//go:build !integration

package application_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"aura-vcf-bot/internal/application"
	"aura-vcf-bot/internal/config"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/adapter"
	"aura-vcf-bot/internal/infra/i18n"
	"aura-vcf-bot/internal/infra/memory"
	"aura-vcf-bot/internal/infra/worker"
	"aura-vcf-bot/internal/usecase"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

// recordingBot captures everything the facade sends.
type recordingBot struct {
	mu       sync.Mutex
	messages []sentMessage
	docs     []model.OutputFile
	failDocs map[string]error
}

func (b *recordingBot) SendMessage(ctx context.Context, id int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sentMessage{ChatID: id, Text: text})
	return nil
}

func (b *recordingBot) SendButtons(ctx context.Context, id int64, text string, rows [][]adapter.InlineButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sentMessage{ChatID: id, Text: text, Rows: rows})
	return nil
}

func (b *recordingBot) SendDocument(ctx context.Context, id int64, f model.OutputFile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failDocs[f.Name]; err != nil {
		return err
	}
	b.docs = append(b.docs, f)
	return nil
}

func (b *recordingBot) last() sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return sentMessage{}
	}
	return b.messages[len(b.messages)-1]
}

func (b *recordingBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.messages))
	for i, m := range b.messages {
		out[i] = m.Text
	}
	return out
}

func (b *recordingBot) saw(text string) bool {
	for _, t := range b.texts() {
		if strings.Contains(t, text) {
			return true
		}
	}
	return false
}

// fakeFiles serves uploads by file id.
type fakeFiles struct {
	data  map[string][]byte
	calls int
}

func (f *fakeFiles) Download(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	f.calls++
	b, ok := f.data[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return b, nil
}

// manualDebouncer keeps armed tasks until the test fires them.
type manualDebouncer struct {
	mu        sync.Mutex
	tasks     map[int64]worker.Task
	arms      int
	cancelled int
}

func newManualDebouncer() *manualDebouncer {
	return &manualDebouncer{tasks: make(map[int64]worker.Task)}
}

func (d *manualDebouncer) Arm(key int64, fn worker.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks[key] = fn
	d.arms++
}

func (d *manualDebouncer) Cancel(key int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tasks[key]
	delete(d.tasks, key)
	if ok {
		d.cancelled++
	}
	return ok
}

func (d *manualDebouncer) Delay() time.Duration { return 5 * time.Second }

func (d *manualDebouncer) fire(t *testing.T, key int64) {
	t.Helper()
	d.mu.Lock()
	fn, ok := d.tasks[key]
	delete(d.tasks, key)
	d.mu.Unlock()
	if !ok {
		t.Fatalf("no pending batch for chat %d", key)
	}
	if err := fn(context.Background()); err != nil {
		t.Fatalf("batch task: %v", err)
	}
}

type fakeMembers struct {
	member bool
	err    error
}

func (m *fakeMembers) IsMemberOfAll(ctx context.Context, userID int64) (bool, error) {
	return m.member, m.err
}

type harness struct {
	facade   *application.BotFacade
	bot      *recordingBot
	files    *fakeFiles
	debounce *manualDebouncer
	states   *memory.StateRepo
	batches  *memory.BatchRepo
	usage    *memory.UsageRepo
}

type harnessOpt func(*application.Deps, *application.FacadeConfig)

func withMembers(m adapter.MembershipChecker, channels ...config.ChannelConfig) harnessOpt {
	return func(d *application.Deps, c *application.FacadeConfig) {
		d.Members = m
		c.Channels = channels
	}
}

func newHarness(t *testing.T, opts ...harnessOpt) *harness {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	log := newTestLogger()
	h := &harness{
		bot:      &recordingBot{failDocs: map[string]error{}},
		files:    &fakeFiles{data: map[string][]byte{}},
		debounce: newManualDebouncer(),
		states:   memory.NewStateRepo(),
		batches:  memory.NewBatchRepo(),
		usage:    memory.NewUsageRepo(100),
	}
	deps := application.Deps{
		VCF:        usecase.NewVCFUseCase(log),
		Stats:      usecase.NewStatsUseCase(h.usage, log),
		States:     h.states,
		Batches:    h.batches,
		Locker:     memory.NewLocker(),
		Bot:        h.bot,
		Files:      h.files,
		Debouncer:  h.debounce,
		Translator: tr,
		Logger:     log,
	}
	cfg := application.FacadeConfig{Credit: "Created by @adityat_5454", MaxFileBytes: 20 << 20}
	for _, o := range opts {
		o(&deps, &cfg)
	}
	h.facade, err = application.NewBotFacade(deps, cfg)
	if err != nil {
		t.Fatalf("NewBotFacade: %v", err)
	}
	return h
}

// upload registers data under a fresh file id and hands it to the facade.
func (h *harness) upload(t *testing.T, chatID int64, name, data string) {
	t.Helper()
	id := "file-" + name
	h.files.data[id] = []byte(data)
	ref := adapter.DocumentRef{FileID: id, FileName: name, FileSize: int64(len(data))}
	if err := h.facade.HandleDocument(context.Background(), chatID, ref); err != nil {
		t.Fatalf("HandleDocument(%s): %v", name, err)
	}
}

func (h *harness) text(t *testing.T, chatID int64, text string) {
	t.Helper()
	if err := h.facade.HandleText(context.Background(), chatID, text); err != nil {
		t.Fatalf("HandleText(%q): %v", text, err)
	}
}

func (h *harness) press(t *testing.T, chatID int64, data string) {
	t.Helper()
	if err := h.facade.HandleCallback(context.Background(), chatID, chatID, data); err != nil {
		t.Fatalf("HandleCallback(%q): %v", data, err)
	}
}

package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"aura-vcf-bot/internal/config"
	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/adapter"
	"aura-vcf-bot/internal/domain/ports/repository"
	"aura-vcf-bot/internal/infra/i18n"
	"aura-vcf-bot/internal/infra/logging"
	"aura-vcf-bot/internal/infra/metrics"
	"aura-vcf-bot/internal/infra/worker"
	"aura-vcf-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Conversation steps.
const (
	StepContactsPerFile = "awaiting_contacts_per_file"
	StepFileName        = "awaiting_file_name"
	StepContactBase     = "awaiting_base_contact_name"
	StepData            = "awaiting_data"
	StepInstruction     = "awaiting_instruction"
	StepFiles           = "awaiting_files"
)

// Callback data carried by inline buttons.
const (
	CbTextToVCF      = "text_to_vcf"
	CbCount          = "count"
	CbAddContact     = "add_contact"
	CbRenameContacts = "rename_contacts"
	CbRenameFiles    = "rename_files"
	CbUploadFiles    = "upload_txt_files"
	CbInputRaw       = "input_raw_numbers"
	CbBackToMenu     = "back_to_menu"
	CbCheckJoin      = "check_join"
)

// Keys of ConversationState.Data.
const (
	keyPerFile     = "contacts_per_file"
	keyFileName    = "file_name"
	keyContactBase = "base_contact_name"
	keyInput       = "input_method"
	keyAddName     = "add_name"
	keyAddPhone    = "add_phone"
	keyNewContact  = "new_contact_name"
	keyNewFileName = "new_file_name"

	inputFiles = "files"
	inputRaw   = "raw"
)

const (
	batchLockTTL = 2 * time.Minute
	statsWindow  = 30 * 24 * time.Hour
)

// Debouncer re-arms a per-chat quiet-period timer.
type Debouncer interface {
	Arm(key int64, fn worker.Task)
	Cancel(key int64) bool
	Delay() time.Duration
}

// Deps are the collaborators of the facade. Members and Stats may be nil.
type Deps struct {
	VCF        usecase.VCFUseCase
	Stats      usecase.StatsUseCase
	States     repository.StateRepository
	Batches    repository.BatchRepository
	Locker     repository.Locker
	Bot        adapter.TelegramBotAdapter
	Files      adapter.FileDownloader
	Members    adapter.MembershipChecker
	Debouncer  Debouncer
	Translator *i18n.Translator
	Logger     *zerolog.Logger
}

// FacadeConfig holds the user-visible knobs of the flows.
type FacadeConfig struct {
	Channels     []config.ChannelConfig
	Credit       string
	MaxFileBytes int64
}

// BotFacade drives the menu flows of the bot. It never touches Telegram types:
// replies go out through the TelegramBotAdapter port.
type BotFacade struct {
	VCF   usecase.VCFUseCase
	Stats usecase.StatsUseCase

	states    repository.StateRepository
	batches   repository.BatchRepository
	locker    repository.Locker
	bot       adapter.TelegramBotAdapter
	files     adapter.FileDownloader
	members   adapter.MembershipChecker
	debouncer Debouncer
	tr        *i18n.Translator
	cfg       FacadeConfig
	log       *zerolog.Logger
}

func NewBotFacade(d Deps, cfg FacadeConfig) (*BotFacade, error) {
	switch {
	case d.VCF == nil:
		return nil, errors.New("vcf usecase is nil")
	case d.States == nil || d.Batches == nil || d.Locker == nil:
		return nil, errors.New("state, batch and lock stores are required")
	case d.Bot == nil || d.Files == nil:
		return nil, errors.New("telegram adapter is nil")
	case d.Debouncer == nil:
		return nil, errors.New("debouncer is nil")
	case d.Translator == nil || d.Logger == nil:
		return nil, errors.New("translator and logger are required")
	}
	l := d.Logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		VCF:       d.VCF,
		Stats:     d.Stats,
		states:    d.States,
		batches:   d.Batches,
		locker:    d.Locker,
		bot:       d.Bot,
		files:     d.Files,
		members:   d.Members,
		debouncer: d.Debouncer,
		tr:        d.Translator,
		cfg:       cfg,
		log:       &l,
	}, nil
}

// ---- Commands ----

// HandleStart gates on channel membership, resets the chat and shows the menu.
func (b *BotFacade) HandleStart(ctx context.Context, chatID, userID int64) error {
	if !b.isMember(ctx, userID) {
		return b.sendJoinPrompt(ctx, chatID, "join_required")
	}
	if err := b.reset(ctx, chatID); err != nil {
		return err
	}
	return b.sendMainMenu(ctx, chatID, b.tr.T("menu_title", b.cfg.Credit))
}

func (b *BotFacade) HandleCancel(ctx context.Context, chatID int64) error {
	if err := b.reset(ctx, chatID); err != nil {
		return err
	}
	return b.sendMainMenu(ctx, chatID, b.tr.T("cancelled"))
}

func (b *BotFacade) HandleHelp(ctx context.Context, chatID int64) error {
	return b.bot.SendMessage(ctx, chatID, b.tr.T("help"))
}

// HandleStats reports usage over the last 30 days. Callers restrict it to admins.
func (b *BotFacade) HandleStats(ctx context.Context, chatID int64) error {
	if b.Stats == nil {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("error_generic"))
	}
	since := time.Now().Add(-statsWindow)
	sum, err := b.Stats.Summary(ctx, since)
	if err != nil {
		logging.With(ctx, b.log).Error().Err(err).Msg("usage summary")
		return b.bot.SendMessage(ctx, chatID, b.tr.T("error_generic"))
	}

	ops := make([]string, 0, len(sum.Operations))
	for op := range sum.Operations {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		lines = append(lines, b.tr.T("stats_line", op, sum.Operations[model.Operation(op)]))
	}
	text := b.tr.T("stats", since.Format("2006-01-02"), sum.Users, sum.FilesOut, sum.ContactsOut, strings.Join(lines, "\n"))
	return b.bot.SendMessage(ctx, chatID, text)
}

// ---- Callbacks ----

type cbHandler func(ctx context.Context, chatID, userID int64) error

func (b *BotFacade) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		CbTextToVCF:      b.startTextToVCF,
		CbCount:          b.startCount,
		CbAddContact:     b.startInstruction(model.OpAddContact, "ask_add_contact"),
		CbRenameContacts: b.startInstruction(model.OpRenameContacts, "ask_rename_contacts"),
		CbRenameFiles:    b.startInstruction(model.OpRenameFiles, "ask_rename_files"),
		CbUploadFiles:    b.chooseUpload,
		CbInputRaw:       b.chooseRaw,
		CbBackToMenu:     b.backToMenu,
		CbCheckJoin:      b.checkJoin,
	}
}

// HandleCallback routes an inline button press.
func (b *BotFacade) HandleCallback(ctx context.Context, chatID, userID int64, data string) error {
	fn, ok := b.cbRoutes()[strings.TrimSpace(data)]
	if !ok {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("unknown_action"))
	}
	return fn(ctx, chatID, userID)
}

func (b *BotFacade) startTextToVCF(ctx context.Context, chatID, _ int64) error {
	if err := b.begin(ctx, chatID, model.OpTextToVCF, StepContactsPerFile); err != nil {
		return err
	}
	return b.bot.SendMessage(ctx, chatID, b.tr.T("ask_contacts_per_file"))
}

func (b *BotFacade) startCount(ctx context.Context, chatID, _ int64) error {
	if err := b.begin(ctx, chatID, model.OpCount, StepFiles); err != nil {
		return err
	}
	return b.bot.SendMessage(ctx, chatID, b.tr.T("upload_count", b.quietSeconds()))
}

func (b *BotFacade) startInstruction(op model.Operation, prompt string) cbHandler {
	return func(ctx context.Context, chatID, _ int64) error {
		if err := b.begin(ctx, chatID, op, StepInstruction); err != nil {
			return err
		}
		return b.bot.SendMessage(ctx, chatID, b.tr.T(prompt))
	}
}

func (b *BotFacade) chooseUpload(ctx context.Context, chatID, _ int64) error {
	st, err := b.awaitingData(ctx, chatID)
	if err != nil || st == nil {
		return err
	}
	st.Set(keyInput, inputFiles)
	st.Step = StepFiles
	if err := b.batches.Clear(ctx, chatID); err != nil {
		return err
	}
	if err := b.states.SetState(ctx, chatID, st); err != nil {
		return err
	}
	return b.bot.SendMessage(ctx, chatID, b.tr.T("upload_txt", b.quietSeconds()))
}

func (b *BotFacade) chooseRaw(ctx context.Context, chatID, _ int64) error {
	st, err := b.awaitingData(ctx, chatID)
	if err != nil || st == nil {
		return err
	}
	st.Set(keyInput, inputRaw)
	if err := b.states.SetState(ctx, chatID, st); err != nil {
		return err
	}
	return b.bot.SendMessage(ctx, chatID, b.tr.T("paste_numbers"))
}

// awaitingData returns the state when the text_to_vcf questions are done;
// otherwise it tells the user and returns nil.
func (b *BotFacade) awaitingData(ctx context.Context, chatID int64) (*repository.ConversationState, error) {
	st, err := b.states.GetState(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.Mode != string(model.OpTextToVCF) || st.Step != StepData {
		return nil, b.bot.SendMessage(ctx, chatID, b.tr.T("complete_questions_first"))
	}
	return st, nil
}

func (b *BotFacade) backToMenu(ctx context.Context, chatID, _ int64) error {
	if err := b.reset(ctx, chatID); err != nil {
		return err
	}
	return b.sendMainMenu(ctx, chatID, b.tr.T("back_to_menu"))
}

func (b *BotFacade) checkJoin(ctx context.Context, chatID, userID int64) error {
	if !b.isMember(ctx, userID) {
		return b.sendJoinPrompt(ctx, chatID, "join_missing")
	}
	if err := b.reset(ctx, chatID); err != nil {
		return err
	}
	return b.sendMainMenu(ctx, chatID, b.tr.T("join_ok"))
}

// ---- Text ----

// HandleText advances the chat's current flow with a plain text message.
func (b *BotFacade) HandleText(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("empty_message"))
	}
	st, err := b.states.GetState(ctx, chatID)
	if err != nil {
		return err
	}
	if st == nil {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("use_menu"))
	}
	ctx = logging.WithMode(ctx, st.Mode)
	logging.With(ctx, b.log).Debug().Str("step", st.Step).Int("text_len", len(text)).Msg("text input")

	switch model.Operation(st.Mode) {
	case model.OpTextToVCF:
		return b.textToVCFInput(ctx, chatID, st, text)
	case model.OpAddContact:
		return b.addContactInput(ctx, chatID, st, text)
	case model.OpRenameContacts:
		return b.instructionInput(ctx, chatID, st, keyNewContact, text, "empty_contact_name", "rename_contacts_saved")
	case model.OpRenameFiles:
		return b.instructionInput(ctx, chatID, st, keyNewFileName, text, "empty_new_file_name", "rename_files_saved")
	case model.OpCount:
		return b.bot.SendMessage(ctx, chatID, b.tr.T("upload_count", b.quietSeconds()))
	}
	return b.bot.SendMessage(ctx, chatID, b.tr.T("use_menu"))
}

func (b *BotFacade) textToVCFInput(ctx context.Context, chatID int64, st *repository.ConversationState, text string) error {
	if st.Get(keyInput) == inputRaw {
		numbers := model.ExtractPhoneNumbers(text)
		if len(numbers) == 0 {
			return b.bot.SendMessage(ctx, chatID, b.tr.T("no_numbers_in_text"))
		}
		return b.runTask(ctx, chatID, model.OpTextToVCF, 0, func() (int, int, error) {
			return b.generate(ctx, chatID, st, numbers)
		})
	}

	switch st.Step {
	case StepContactsPerFile:
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			return b.bot.SendMessage(ctx, chatID, b.tr.T("invalid_contacts_per_file"))
		}
		st.Set(keyPerFile, strconv.Itoa(n))
		return b.advance(ctx, chatID, st, StepFileName, b.tr.T("ask_file_name"))

	case StepFileName:
		name := model.SanitizeName(text)
		if name == "" {
			return b.bot.SendMessage(ctx, chatID, b.tr.T("empty_file_name"))
		}
		st.Set(keyFileName, name)
		return b.advance(ctx, chatID, st, StepContactBase, b.tr.T("ask_contact_base"))

	case StepContactBase:
		base := model.SanitizeName(text)
		if base == "" {
			return b.bot.SendMessage(ctx, chatID, b.tr.T("empty_contact_base"))
		}
		st.Set(keyContactBase, base)
		st.Step = StepData
		if err := b.states.SetState(ctx, chatID, st); err != nil {
			return err
		}
		rows := [][]adapter.InlineButton{
			{{Text: b.tr.T("btn_upload_files"), Data: CbUploadFiles}},
			{{Text: b.tr.T("btn_input_raw"), Data: CbInputRaw}},
		}
		return b.bot.SendButtons(ctx, chatID, b.tr.T("choose_input"), rows)

	case StepFiles:
		return b.bot.SendMessage(ctx, chatID, b.tr.T("upload_txt", b.quietSeconds()))
	}
	return b.bot.SendMessage(ctx, chatID, b.tr.T("use_buttons"))
}

func (b *BotFacade) addContactInput(ctx context.Context, chatID int64, st *repository.ConversationState, text string) error {
	name, phone, err := b.VCF.ParseContactLine(text)
	if err != nil {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("add_contact_format"))
	}
	st.Set(keyAddName, model.SanitizeName(name))
	st.Set(keyAddPhone, phone)
	if err := b.batches.Clear(ctx, chatID); err != nil {
		return err
	}
	return b.advance(ctx, chatID, st, StepFiles, b.tr.T("add_contact_saved", name, phone, b.quietSeconds()))
}

func (b *BotFacade) instructionInput(ctx context.Context, chatID int64, st *repository.ConversationState, key, text, emptyMsg, savedMsg string) error {
	if st.Step != StepInstruction {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("use_menu"))
	}
	value := model.SanitizeName(text)
	if value == "" {
		return b.bot.SendMessage(ctx, chatID, b.tr.T(emptyMsg))
	}
	st.Set(key, value)
	if err := b.batches.Clear(ctx, chatID); err != nil {
		return err
	}
	return b.advance(ctx, chatID, st, StepFiles, b.tr.T(savedMsg, b.quietSeconds()))
}

// ---- Documents ----

// HandleDocument size-checks and downloads an upload. Inside a flow that
// awaits files it joins the chat's batch and re-arms the quiet period;
// outside any flow a TXT/CSV list is converted right away.
func (b *BotFacade) HandleDocument(ctx context.Context, chatID int64, doc adapter.DocumentRef) error {
	if err := b.VCF.CheckSize(doc.FileSize, b.cfg.MaxFileBytes); err != nil {
		return b.sendTooLarge(ctx, chatID, doc.FileSize)
	}
	st, err := b.states.GetState(ctx, chatID)
	if err != nil {
		return err
	}
	in := model.InputFile{Name: doc.FileName}
	if in.Name == "" {
		in.Name = "file_" + shortID(doc.FileID)
	}
	if st != nil && st.Step != StepFiles {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("complete_questions_first"))
	}
	if st == nil && !in.IsText() {
		if in.IsVCF() {
			return b.bot.SendMessage(ctx, chatID, b.tr.T("use_menu"))
		}
		return b.bot.SendMessage(ctx, chatID, b.tr.T("unsupported_file"))
	}

	data, err := b.files.Download(ctx, doc.FileID, b.cfg.MaxFileBytes)
	if errors.Is(err, domain.ErrFileTooLarge) {
		return b.sendTooLarge(ctx, chatID, max(doc.FileSize, int64(len(data))))
	}
	if err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Str("file", in.Name).Msg("download failed")
		return b.bot.SendMessage(ctx, chatID, b.tr.T("download_failed", in.Name))
	}
	in.Data = data

	if st == nil {
		return b.convertUpload(ctx, chatID, in)
	}

	n, err := b.batches.Append(ctx, chatID, in)
	if err != nil {
		return err
	}
	logging.With(logging.WithMode(ctx, st.Mode), b.log).Debug().Str("file", in.Name).Int("batch", n).Msg("file queued")
	b.debouncer.Arm(chatID, func(taskCtx context.Context) error {
		taskCtx = logging.WithTraceID(logging.WithTgID(taskCtx, chatID), logging.TraceID(ctx))
		return b.FlushBatch(taskCtx, chatID)
	})
	return nil
}

// convertUpload answers a list without contacts with a single notice; no
// usage is recorded and the menu is not shown.
func (b *BotFacade) convertUpload(ctx context.Context, chatID int64, in model.InputFile) error {
	out, n, err := b.VCF.ConvertText(ctx, string(in.Data))
	if errors.Is(err, domain.ErrInvalidInput) {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("no_contacts_in_txt"))
	}
	return b.runTask(ctx, chatID, model.OpTextToVCF, 1, func() (int, int, error) {
		if err != nil {
			return 0, 0, err
		}
		return b.sendFiles(ctx, chatID, []model.OutputFile{out}), n, nil
	})
}

// FlushBatch processes the chat's collected files once the quiet period ended.
// It is a no-op when the chat left the awaiting-files step meanwhile.
func (b *BotFacade) FlushBatch(ctx context.Context, chatID int64) error {
	key := fmt.Sprintf("batch_lock:%d", chatID)
	token, err := b.locker.TryLock(ctx, key, batchLockTTL)
	if errors.Is(err, domain.ErrBatchLocked) {
		return b.bot.SendMessage(ctx, chatID, b.tr.T("batch_busy"))
	}
	if err != nil {
		return err
	}
	defer func() { _ = b.locker.Unlock(context.WithoutCancel(ctx), key, token) }()

	st, err := b.states.GetState(ctx, chatID)
	if err != nil || st == nil || st.Step != StepFiles {
		return err
	}
	files, err := b.batches.List(ctx, chatID)
	if err != nil || len(files) == 0 {
		return err
	}
	op := model.Operation(st.Mode)
	ctx = logging.WithMode(ctx, st.Mode)
	logging.With(ctx, b.log).Info().Int("files", len(files)).Msg("processing batch")

	return b.runTask(ctx, chatID, op, len(files), func() (int, int, error) {
		return b.process(ctx, chatID, st, files)
	})
}

// process runs one batch and reports (files sent, contacts written).
func (b *BotFacade) process(ctx context.Context, chatID int64, st *repository.ConversationState, files []model.InputFile) (int, int, error) {
	switch model.Operation(st.Mode) {
	case model.OpCount:
		sum := b.VCF.CountFiles(ctx, files)
		text := b.tr.T("count_result_numbers", sum.Unique)
		if sum.Contacts > 0 {
			text = b.tr.T("count_result_contacts", sum.Contacts, sum.Unique)
		}
		return 0, 0, b.bot.SendMessage(ctx, chatID, text)

	case model.OpTextToVCF:
		numbers := b.VCF.ExtractNumbers(ctx, files)
		if len(numbers) == 0 {
			return 0, 0, b.bot.SendMessage(ctx, chatID, b.tr.T("no_numbers_in_files"))
		}
		return b.generate(ctx, chatID, st, numbers)

	case model.OpAddContact:
		outs, err := b.VCF.AddContactToFiles(ctx, files, st.Get(keyAddName), st.Get(keyAddPhone))
		if err != nil {
			return 0, 0, err
		}
		return b.sendFiles(ctx, chatID, outs), len(outs), nil

	case model.OpRenameContacts:
		outs, total := b.VCF.RenameContactsInFiles(ctx, files, st.Get(keyNewContact))
		if len(outs) == 0 {
			return 0, 0, b.bot.SendMessage(ctx, chatID, b.tr.T("no_contacts_in_files"))
		}
		return b.sendFiles(ctx, chatID, outs), total, nil

	case model.OpRenameFiles:
		outs := b.VCF.RenameFileBatch(ctx, files, st.Get(keyNewFileName))
		return b.sendFiles(ctx, chatID, outs), 0, nil
	}
	return 0, 0, fmt.Errorf("mode %q: %w", st.Mode, domain.ErrInvalidArgument)
}

func (b *BotFacade) generate(ctx context.Context, chatID int64, st *repository.ConversationState, numbers []string) (int, int, error) {
	perFile, _ := strconv.Atoi(st.Get(keyPerFile))
	outs, err := b.VCF.GenerateFiles(ctx, numbers, model.SplitOptions{
		PerFile:     perFile,
		FileBase:    st.Get(keyFileName),
		ContactBase: st.Get(keyContactBase),
	})
	if err != nil {
		return 0, 0, err
	}
	sent := b.sendFiles(ctx, chatID, outs)
	if err := b.bot.SendMessage(ctx, chatID, b.tr.T("generated_files", sent, perFile)); err != nil {
		return sent, len(numbers), err
	}
	return sent, len(numbers), nil
}

// runTask wraps one finished operation: metrics, usage record, reset and the
// closing menu. The menu is shown even after a failure.
func (b *BotFacade) runTask(ctx context.Context, chatID int64, op model.Operation, filesIn int, fn func() (int, int, error)) error {
	start := time.Now()
	sent, contacts, err := fn()
	metrics.ObserveBatch(string(op), time.Since(start))

	status := "ok"
	if err != nil {
		status = "error"
		logging.With(ctx, b.log).Error().Err(err).Str("operation", string(op)).Msg("task failed")
		_ = b.bot.SendMessage(ctx, chatID, b.tr.T("error_generic"))
	}
	metrics.IncOperation(string(op), status)
	metrics.AddContacts(string(op), contacts)

	if err == nil && b.Stats != nil {
		files := sent
		if op == model.OpCount {
			files = filesIn
		}
		// usage is best-effort and never fails the task
		_ = b.Stats.Record(ctx, chatID, op, files, contacts)
	}

	if rerr := b.reset(ctx, chatID); rerr != nil {
		logging.With(ctx, b.log).Warn().Err(rerr).Msg("reset after task")
	}
	return b.sendMainMenu(ctx, chatID, b.tr.T("task_completed"))
}

func (b *BotFacade) sendFiles(ctx context.Context, chatID int64, outs []model.OutputFile) int {
	sent := 0
	for _, f := range outs {
		if err := b.bot.SendDocument(ctx, chatID, f); err != nil {
			logging.With(ctx, b.log).Warn().Err(err).Str("file", f.Name).Msg("send document")
			_ = b.bot.SendMessage(ctx, chatID, b.tr.T("send_failed", f.Name))
			continue
		}
		sent++
	}
	return sent
}

// ---- helpers ----

func (b *BotFacade) begin(ctx context.Context, chatID int64, op model.Operation, step string) error {
	if err := b.reset(ctx, chatID); err != nil {
		return err
	}
	return b.states.SetState(ctx, chatID, &repository.ConversationState{Mode: string(op), Step: step})
}

func (b *BotFacade) advance(ctx context.Context, chatID int64, st *repository.ConversationState, step, prompt string) error {
	st.Step = step
	if err := b.states.SetState(ctx, chatID, st); err != nil {
		return err
	}
	return b.bot.SendMessage(ctx, chatID, prompt)
}

// reset cancels a pending batch and forgets the chat's state and files.
func (b *BotFacade) reset(ctx context.Context, chatID int64) error {
	b.debouncer.Cancel(chatID)
	if err := b.batches.Clear(ctx, chatID); err != nil {
		return err
	}
	return b.states.ClearState(ctx, chatID)
}

func (b *BotFacade) sendMainMenu(ctx context.Context, chatID int64, text string) error {
	rows := [][]adapter.InlineButton{
		{{Text: b.tr.T("btn_text_to_vcf"), Data: CbTextToVCF}},
		{{Text: b.tr.T("btn_count"), Data: CbCount}},
		{{Text: b.tr.T("btn_add_contact"), Data: CbAddContact}},
		{{Text: b.tr.T("btn_rename_contacts"), Data: CbRenameContacts}},
		{{Text: b.tr.T("btn_rename_files"), Data: CbRenameFiles}},
	}
	return b.bot.SendButtons(ctx, chatID, text, rows)
}

func (b *BotFacade) isMember(ctx context.Context, userID int64) bool {
	if b.members == nil || len(b.cfg.Channels) == 0 {
		return true
	}
	ok, err := b.members.IsMemberOfAll(ctx, userID)
	if err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Msg("membership check failed")
		return false
	}
	return ok
}

func (b *BotFacade) sendJoinPrompt(ctx context.Context, chatID int64, key string) error {
	rows := make([][]adapter.InlineButton, 0, len(b.cfg.Channels)+1)
	names := make([]string, 0, len(b.cfg.Channels))
	for _, ch := range b.cfg.Channels {
		rows = append(rows, []adapter.InlineButton{{Text: b.tr.T("btn_join", ch.Username), URL: ch.InviteURL}})
		names = append(names, "• "+ch.Username)
	}
	rows = append(rows, []adapter.InlineButton{{Text: b.tr.T("btn_verify"), Data: CbCheckJoin}})
	return b.bot.SendButtons(ctx, chatID, b.tr.T(key, strings.Join(names, "\n")), rows)
}

func (b *BotFacade) sendTooLarge(ctx context.Context, chatID, size int64) error {
	return b.bot.SendMessage(ctx, chatID, b.tr.T("file_too_large", float64(size)/(1<<20), b.cfg.MaxFileBytes>>20))
}

func (b *BotFacade) quietSeconds() int {
	return int(b.debouncer.Delay().Round(time.Second) / time.Second)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

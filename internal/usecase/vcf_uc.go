package usecase

import (
	"context"
	"fmt"
	"strings"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ VCFUseCase = (*vcfUC)(nil)

// LegacyOutputName is the file name used when a TXT/CSV list is converted
// outside of any flow.
const LegacyOutputName = "contacts.vcf"

// VCFUseCase is the contact-file transformer. Every operation works on
// in-memory bytes and never touches storage.
type VCFUseCase interface {
	BuildVCF(ctx context.Context, entries []model.Entry, naming model.NamingPolicy) (model.Document, error)
	CountNumbers(ctx context.Context, contents []byte) int
	AddContact(ctx context.Context, doc model.Document, name, number string) (model.Document, error)
	RenameContacts(ctx context.Context, doc model.Document, naming model.NamingPolicy) model.Document
	RenameFiles(ctx context.Context, names []string, naming model.FileNamingPolicy) []model.FileRename

	// Batch forms used by the bot flows.
	GenerateFiles(ctx context.Context, numbers []string, opts model.SplitOptions) ([]model.OutputFile, error)
	ConvertText(ctx context.Context, text string) (model.OutputFile, int, error)
	CountFiles(ctx context.Context, files []model.InputFile) model.CountSummary
	ExtractNumbers(ctx context.Context, files []model.InputFile) []string
	ParseContactLine(line string) (name, number string, err error)
	AddContactToFiles(ctx context.Context, files []model.InputFile, name, number string) ([]model.OutputFile, error)
	RenameContactsInFiles(ctx context.Context, files []model.InputFile, base string) ([]model.OutputFile, int)
	RenameFileBatch(ctx context.Context, files []model.InputFile, base string) []model.OutputFile
	CheckSize(size, limit int64) error
}

type vcfUC struct {
	log *zerolog.Logger
}

func NewVCFUseCase(logger *zerolog.Logger) *vcfUC {
	return &vcfUC{log: logger}
}

// BuildVCF emits one record per entry, in input order. Duplicates are kept.
func (u *vcfUC) BuildVCF(ctx context.Context, entries []model.Entry, naming model.NamingPolicy) (model.Document, error) {
	defer logging.TraceDuration(u.log, "VCFUC.BuildVCF")()

	if len(entries) == 0 {
		return model.Document{}, fmt.Errorf("build vcf: empty entry list: %w", domain.ErrInvalidInput)
	}
	if naming == nil {
		naming = model.LabelNaming{}
	}
	doc := model.Document{Cards: make([]model.VCard, 0, len(entries))}
	for i, e := range entries {
		label, raw := model.SplitEntry(e.Value)
		phone, ok := model.NormalizeNumber(raw)
		if !ok {
			return model.Document{}, fmt.Errorf("build vcf: entry %d %q: %w", i+1, e.Value, domain.ErrInvalidInput)
		}
		doc.Cards = append(doc.Cards, model.VCard{
			DisplayName: model.SanitizeName(naming.DisplayName(i, label)),
			PhoneNumber: phone,
		})
	}
	return doc, nil
}

// CountNumbers returns the number of unique numeric tokens in contents.
// vCard input is counted by its TEL values.
func (u *vcfUC) CountNumbers(ctx context.Context, contents []byte) int {
	defer logging.TraceDuration(u.log, "VCFUC.CountNumbers")()
	return len(uniqueTokens(nil, contents))
}

func (u *vcfUC) AddContact(ctx context.Context, doc model.Document, name, number string) (model.Document, error) {
	defer logging.TraceDuration(u.log, "VCFUC.AddContact")()

	phone, ok := model.NormalizeNumber(number)
	if !ok {
		return model.Document{}, fmt.Errorf("add contact: %w", domain.ErrInvalidInput)
	}
	name = model.SanitizeName(name)
	if name == "" {
		name = model.UnknownName
	}
	out := doc.Clone()
	out.Cards = append(out.Cards, model.VCard{DisplayName: name, PhoneNumber: phone})
	return out, nil
}

// RenameContacts rewrites display names only; phones, order and count are kept.
// A nil policy keeps the current names.
func (u *vcfUC) RenameContacts(ctx context.Context, doc model.Document, naming model.NamingPolicy) model.Document {
	defer logging.TraceDuration(u.log, "VCFUC.RenameContacts")()

	if naming == nil {
		naming = model.LabelNaming{}
	}
	out := doc.Clone()
	for i := range out.Cards {
		out.Cards[i].DisplayName = model.SanitizeName(naming.DisplayName(i, out.Cards[i].DisplayName))
	}
	return out
}

// RenameFiles maps each old name to its new one. A nil policy keeps the names.
func (u *vcfUC) RenameFiles(ctx context.Context, names []string, naming model.FileNamingPolicy) []model.FileRename {
	defer logging.TraceDuration(u.log, "VCFUC.RenameFiles")()

	out := make([]model.FileRename, len(names))
	for i, old := range names {
		renamed := old
		if naming != nil {
			renamed = naming.FileName(i, old)
		}
		out[i] = model.FileRename{Old: old, New: renamed}
	}
	return out
}

// GenerateFiles splits numbers into files of opts.PerFile contacts. File n is
// "<FileBase>_<n>.vcf"; contacts are numbered globally from 1.
func (u *vcfUC) GenerateFiles(ctx context.Context, numbers []string, opts model.SplitOptions) ([]model.OutputFile, error) {
	defer logging.TraceDuration(u.log, "VCFUC.GenerateFiles")()

	if opts.PerFile <= 0 {
		return nil, fmt.Errorf("generate files: contacts per file %d: %w", opts.PerFile, domain.ErrInvalidArgument)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("generate files: %w", domain.ErrInvalidInput)
	}

	entries := make([]model.Entry, len(numbers))
	for i, n := range numbers {
		entries[i] = model.Entry{Value: n}
	}
	doc, err := u.BuildVCF(ctx, entries, model.SequentialNaming{Prefix: opts.ContactBase, Start: 1})
	if err != nil {
		return nil, err
	}

	naming := model.FileNaming{Base: opts.FileBase, Start: 1}
	var files []model.OutputFile
	for start := 0; start < len(doc.Cards); start += opts.PerFile {
		end := min(start+opts.PerFile, len(doc.Cards))
		chunk := model.Document{Cards: doc.Cards[start:end]}
		files = append(files, model.OutputFile{
			Name: naming.FileName(len(files), ""),
			Data: chunk.Bytes(),
		})
	}
	u.log.Debug().Int("numbers", len(numbers)).Int("files", len(files)).Msg("vcf files generated")
	return files, nil
}

// ConvertText turns a free-form list into a single contacts.vcf. Lines that
// carry no digits are skipped; the result reports how many contacts it holds.
func (u *vcfUC) ConvertText(ctx context.Context, text string) (model.OutputFile, int, error) {
	defer logging.TraceDuration(u.log, "VCFUC.ConvertText")()

	var entries []model.Entry
	for _, e := range model.ParseEntries(text) {
		if _, raw := model.SplitEntry(e.Value); strings.ContainsAny(raw, "0123456789") {
			entries = append(entries, e)
		}
	}
	doc, err := u.BuildVCF(ctx, entries, model.LabelNaming{})
	if err != nil {
		return model.OutputFile{}, 0, err
	}
	return model.OutputFile{Name: LegacyOutputName, Data: doc.Bytes()}, doc.Len(), nil
}

// CountFiles counts contacts in vCard files and unique numbers across all files.
func (u *vcfUC) CountFiles(ctx context.Context, files []model.InputFile) model.CountSummary {
	defer logging.TraceDuration(u.log, "VCFUC.CountFiles")()

	var (
		sum  model.CountSummary
		seen = make(map[string]struct{})
	)
	for _, f := range files {
		if isVCard(f) {
			sum.Contacts += model.ParseDocument(f.Data).Len()
		}
		uniqueTokens(seen, f.Data)
	}
	sum.Unique = len(seen)
	return sum
}

// ExtractNumbers collects phone numbers from every file, de-duplicated across
// the batch in upload order.
func (u *vcfUC) ExtractNumbers(ctx context.Context, files []model.InputFile) []string {
	defer logging.TraceDuration(u.log, "VCFUC.ExtractNumbers")()

	seen := make(map[string]struct{})
	var out []string
	for _, f := range files {
		var found []string
		if isVCard(f) {
			found = model.ParseDocument(f.Data).Phones()
		} else {
			found = model.ExtractPhoneNumbers(string(f.Data))
		}
		for _, n := range found {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// ParseContactLine reads an add-contact instruction such as "John,+123".
func (u *vcfUC) ParseContactLine(line string) (string, string, error) {
	label, raw := model.SplitEntry(line)
	if label == "" || raw == "" {
		return "", "", fmt.Errorf("contact line %q: %w", line, domain.ErrInvalidInput)
	}
	phone, ok := model.NormalizeNumber(raw)
	if !ok {
		return "", "", fmt.Errorf("contact line %q: %w", line, domain.ErrInvalidInput)
	}
	return label, phone, nil
}

func (u *vcfUC) AddContactToFiles(ctx context.Context, files []model.InputFile, name, number string) ([]model.OutputFile, error) {
	defer logging.TraceDuration(u.log, "VCFUC.AddContactToFiles")()

	out := make([]model.OutputFile, 0, len(files))
	for _, f := range files {
		doc, err := u.AddContact(ctx, model.ParseDocument(f.Data), name, number)
		if err != nil {
			return nil, err
		}
		out = append(out, model.OutputFile{Name: f.Name, Data: doc.Bytes()})
	}
	return out, nil
}

// RenameContactsInFiles renames contacts "<base> <n>" with n running across
// all files in upload order. Files without contacts produce no output.
func (u *vcfUC) RenameContactsInFiles(ctx context.Context, files []model.InputFile, base string) ([]model.OutputFile, int) {
	defer logging.TraceDuration(u.log, "VCFUC.RenameContactsInFiles")()

	var (
		out   []model.OutputFile
		total int
	)
	for _, f := range files {
		doc := model.ParseDocument(f.Data)
		if doc.Len() == 0 {
			u.log.Debug().Str("file", f.Name).Msg("no contacts to rename")
			continue
		}
		renamed := u.RenameContacts(ctx, doc, model.SequentialNaming{Prefix: base, Start: total + 1})
		total += renamed.Len()
		out = append(out, model.OutputFile{Name: f.Name, Data: renamed.Bytes()})
	}
	return out, total
}

// RenameFileBatch keeps the file contents and renames them "<base>_<n>.vcf".
func (u *vcfUC) RenameFileBatch(ctx context.Context, files []model.InputFile, base string) []model.OutputFile {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	renames := u.RenameFiles(ctx, names, model.FileNaming{Base: base, Start: 1})
	out := make([]model.OutputFile, len(files))
	for i, f := range files {
		out[i] = model.OutputFile{Name: renames[i].New, Data: f.Data}
	}
	return out
}

// CheckSize rejects inputs above limit bytes before any processing.
// A non-positive limit disables the check.
func (u *vcfUC) CheckSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("%.1f MB over %d MB: %w", float64(size)/(1<<20), limit>>20, domain.ErrFileTooLarge)
	}
	return nil
}

func isVCard(f model.InputFile) bool {
	return f.IsVCF() || model.LooksLikeVCF(f.Data)
}

// uniqueTokens adds the normalized numbers of data to seen and returns it.
func uniqueTokens(seen map[string]struct{}, data []byte) map[string]struct{} {
	if seen == nil {
		seen = make(map[string]struct{})
	}
	if model.LooksLikeVCF(data) {
		for _, p := range model.ParseDocument(data).Phones() {
			seen[p] = struct{}{}
		}
		return seen
	}
	for _, e := range model.ParseEntries(string(data)) {
		for _, tok := range model.NumericTokens(e.Value) {
			seen[tok] = struct{}{}
		}
	}
	return seen
}

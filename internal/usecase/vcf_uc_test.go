//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/usecase"

	"github.com/google/go-cmp/cmp"
)

func entries(values ...string) []model.Entry {
	out := make([]model.Entry, len(values))
	for i, v := range values {
		out[i] = model.Entry{Value: v}
	}
	return out
}

func docOf(pairs ...string) model.Document {
	var d model.Document
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Cards = append(d.Cards, model.VCard{DisplayName: pairs[i], PhoneNumber: pairs[i+1]})
	}
	return d
}

func TestVCFUseCase_BuildVCF(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewVCFUseCase(newTestLogger())

	t.Run("should emit one record per entry in input order", func(t *testing.T) {
		doc, err := uc.BuildVCF(ctx, entries("John,+1 555 0100", "5550111", "5550111"), model.LabelNaming{})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		want := docOf("John", "+15550100", model.UnknownName, "+5550111", model.UnknownName, "+5550111")
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("BuildVCF mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should number contacts with a sequential policy", func(t *testing.T) {
		doc, err := uc.BuildVCF(ctx, entries("111", "222"), model.SequentialNaming{Prefix: "Lead", Start: 1})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if diff := cmp.Diff([]string{"Lead 1", "Lead 2"}, doc.Names()); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should accept a number written before its label", func(t *testing.T) {
		doc, err := uc.BuildVCF(ctx, entries("5550100 (work)", "5550111,home"), model.LabelNaming{})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		want := docOf("(work)", "+5550100", "home", "+5550111")
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("BuildVCF mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should fail when an entry has no digits", func(t *testing.T) {
		_, err := uc.BuildVCF(ctx, entries("111", "hello"), model.LabelNaming{})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("should fail on an empty list", func(t *testing.T) {
		_, err := uc.BuildVCF(ctx, nil, model.LabelNaming{})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("should round-trip through serialization", func(t *testing.T) {
		doc, err := uc.BuildVCF(ctx, entries("Ann,+100", "Bob|200", "300"), model.LabelNaming{})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if diff := cmp.Diff(doc, model.ParseDocument(doc.Bytes())); diff != "" {
			t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestVCFUseCase_CountNumbers(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewVCFUseCase(newTestLogger())

	testCases := []struct {
		name     string
		contents string
		want     int
	}{
		{"duplicates collapse", "1\n1\n2", 2},
		{"formatting is ignored", "+1 555 0100\n15550100\n", 1},
		{"blank and text lines", "\n\nhello\n  42  \n", 1},
		{"vcard input counts TEL values", docOf("A", "+1", "B", "+1", "C", "+2").String(), 2},
		{"empty input", "", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := uc.CountNumbers(ctx, []byte(tc.contents)); got != tc.want {
				t.Errorf("CountNumbers() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestVCFUseCase_AddContact(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewVCFUseCase(newTestLogger())
	orig := docOf("A", "+1", "B", "+2")

	t.Run("should append exactly one record and keep prior ones", func(t *testing.T) {
		got, err := uc.AddContact(ctx, orig, "Zed", "+999")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		want := docOf("A", "+1", "B", "+2", "Zed", "+999")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("AddContact mismatch (-want +got):\n%s", diff)
		}
		if orig.Len() != 2 {
			t.Errorf("expected input document to stay untouched, got %d records", orig.Len())
		}
	})

	t.Run("should default an empty name", func(t *testing.T) {
		got, err := uc.AddContact(ctx, model.Document{}, "  ", "555")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if got.Cards[0].DisplayName != model.UnknownName {
			t.Errorf("expected %q, got %q", model.UnknownName, got.Cards[0].DisplayName)
		}
	})

	t.Run("should reject a number without digits", func(t *testing.T) {
		_, err := uc.AddContact(ctx, orig, "Zed", "n/a")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestVCFUseCase_Rename(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewVCFUseCase(newTestLogger())

	t.Run("RenameContacts should change display names only", func(t *testing.T) {
		orig := docOf("A", "+1", "A", "+2")
		got := uc.RenameContacts(ctx, orig, model.SequentialNaming{Prefix: "New", Start: 1})
		if diff := cmp.Diff([]string{"New 1", "New 2"}, got.Names()); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(orig.Phones(), got.Phones()); diff != "" {
			t.Errorf("phones changed (-want +got):\n%s", diff)
		}
	})

	t.Run("RenameFiles should map old names to new ones in order", func(t *testing.T) {
		got := uc.RenameFiles(ctx, []string{"a.vcf", "b.vcf"}, model.FileNaming{Base: "leads", Start: 1})
		want := []model.FileRename{{Old: "a.vcf", New: "leads_1.vcf"}, {Old: "b.vcf", New: "leads_2.vcf"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("RenameFiles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("nil policies should keep names", func(t *testing.T) {
		orig := docOf("A", "+1", "B", "+2")
		got := uc.RenameContacts(ctx, orig, nil)
		if diff := cmp.Diff(orig, got); diff != "" {
			t.Errorf("RenameContacts mismatch (-want +got):\n%s", diff)
		}
		files := uc.RenameFiles(ctx, []string{"a.vcf"}, nil)
		if diff := cmp.Diff([]model.FileRename{{Old: "a.vcf", New: "a.vcf"}}, files); diff != "" {
			t.Errorf("RenameFiles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("RenameContactsInFiles should keep grouped and BOM-prefixed records", func(t *testing.T) {
		files := []model.InputFile{{
			Name: "ios.vcf",
			Data: []byte("\uFEFFBEGIN:VCARD\nFN:Ann\nitem1.TEL;type=CELL:+1 555 0100\nEND:VCARD\n" +
				"BEGIN:VCARD\nFN:Bob\nTEL:+222\nEND:VCARD\n"),
		}}
		out, total := uc.RenameContactsInFiles(ctx, files, "X")
		if total != 2 || len(out) != 1 {
			t.Fatalf("expected 2 contacts in 1 file, got %d in %d", total, len(out))
		}
		if diff := cmp.Diff([]string{"+15550100", "+222"}, model.ParseDocument(out[0].Data).Phones()); diff != "" {
			t.Errorf("phones mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("RenameContactsInFiles should number contacts across files", func(t *testing.T) {
		files := []model.InputFile{
			{Name: "one.vcf", Data: docOf("a", "+1", "b", "+2").Bytes()},
			{Name: "empty.vcf", Data: []byte("nothing here")},
			{Name: "two.vcf", Data: docOf("c", "+3").Bytes()},
		}
		out, total := uc.RenameContactsInFiles(ctx, files, "X")
		if total != 3 || len(out) != 2 {
			t.Fatalf("expected 3 contacts in 2 files, got %d in %d", total, len(out))
		}
		if out[1].Name != "two.vcf" {
			t.Errorf("expected original file name, got %q", out[1].Name)
		}
		if got := model.ParseDocument(out[1].Data).Names(); got[0] != "X 3" {
			t.Errorf("expected global numbering, got %v", got)
		}
	})

	t.Run("RenameFileBatch should keep contents", func(t *testing.T) {
		files := []model.InputFile{{Name: "x.vcf", Data: []byte("1")}, {Name: "y.vcf", Data: []byte("2")}}
		out := uc.RenameFileBatch(ctx, files, "contacts.vcf")
		want := []model.OutputFile{{Name: "contacts_1.vcf", Data: []byte("1")}, {Name: "contacts_2.vcf", Data: []byte("2")}}
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("RenameFileBatch mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestVCFUseCase_GenerateFiles(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewVCFUseCase(newTestLogger())

	t.Run("should split numbers into files and number contacts globally", func(t *testing.T) {
		numbers := []string{"+1001", "+1002", "+1003", "+1004", "+1005"}
		files, err := uc.GenerateFiles(ctx, numbers, model.SplitOptions{PerFile: 2, FileBase: "batch", ContactBase: "C"})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		var names []string
		for _, f := range files {
			names = append(names, f.Name)
		}
		if diff := cmp.Diff([]string{"batch_1.vcf", "batch_2.vcf", "batch_3.vcf"}, names); diff != "" {
			t.Errorf("file names mismatch (-want +got):\n%s", diff)
		}
		last := model.ParseDocument(files[2].Data)
		if diff := cmp.Diff(docOf("C 5", "+1005"), last); diff != "" {
			t.Errorf("last file mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should reject a non-positive file size", func(t *testing.T) {
		_, err := uc.GenerateFiles(ctx, []string{"+1"}, model.SplitOptions{PerFile: 0})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should reject an empty list", func(t *testing.T) {
		_, err := uc.GenerateFiles(ctx, nil, model.SplitOptions{PerFile: 10})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestVCFUseCase_Batches(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewVCFUseCase(newTestLogger())

	t.Run("ConvertText should skip lines without digits", func(t *testing.T) {
		out, n, err := uc.ConvertText(ctx, "John,+123\nnoise\n+456\n")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if out.Name != usecase.LegacyOutputName || n != 2 {
			t.Errorf("unexpected output %q with %d contacts", out.Name, n)
		}
		want := docOf("John", "+123", model.UnknownName, "+456")
		if diff := cmp.Diff(want, model.ParseDocument(out.Data)); diff != "" {
			t.Errorf("ConvertText mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ConvertText should fail when nothing is usable", func(t *testing.T) {
		_, _, err := uc.ConvertText(ctx, "just words\n")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("CountFiles should sum contacts and union numbers", func(t *testing.T) {
		files := []model.InputFile{
			{Name: "a.vcf", Data: docOf("A", "+111", "B", "+222").Bytes()},
			{Name: "b.txt", Data: []byte("222\n333\n")},
		}
		got := uc.CountFiles(ctx, files)
		if diff := cmp.Diff(model.CountSummary{Contacts: 2, Unique: 3}, got); diff != "" {
			t.Errorf("CountFiles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ExtractNumbers should de-duplicate across files", func(t *testing.T) {
		files := []model.InputFile{
			{Name: "a.txt", Data: []byte("call 5550102030 or +1 5550102030")},
			{Name: "b.vcf", Data: docOf("X", "+5550102030").Bytes()},
		}
		got := uc.ExtractNumbers(ctx, files)
		if diff := cmp.Diff([]string{"+5550102030"}, got); diff != "" {
			t.Errorf("ExtractNumbers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ParseContactLine should need both a name and a number", func(t *testing.T) {
		name, phone, err := uc.ParseContactLine("John,+1234567890")
		if err != nil || name != "John" || phone != "+1234567890" {
			t.Errorf("unexpected result (%q, %q, %v)", name, phone, err)
		}
		if _, _, err := uc.ParseContactLine("5550100"); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("AddContactToFiles should keep file names", func(t *testing.T) {
		files := []model.InputFile{{Name: "a.vcf", Data: docOf("A", "+1").Bytes()}}
		out, err := uc.AddContactToFiles(ctx, files, "Zed", "+9")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if out[0].Name != "a.vcf" || model.ParseDocument(out[0].Data).Len() != 2 {
			t.Errorf("unexpected output %+v", out[0])
		}
	})

	t.Run("CheckSize should reject oversized input", func(t *testing.T) {
		if err := uc.CheckSize(21<<20, 20<<20); !errors.Is(err, domain.ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
		if err := uc.CheckSize(20<<20, 20<<20); err != nil {
			t.Errorf("expected exact limit to pass, got %v", err)
		}
	})
}

// Command vcftool runs the contact-file transformations of the bot offline.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "unknown"
)

// CLI is the top-level command structure for vcftool.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Verbose bool             `help:"Log use-case tracing to stderr." short:"v"`

	Build          BuildCmd          `cmd:"" help:"Build VCF files from text lists of numbers."`
	Count          CountCmd          `cmd:"" help:"Count contacts and unique numbers."`
	Add            AddCmd            `cmd:"" help:"Append one contact to every VCF file."`
	RenameContacts RenameContactsCmd `cmd:"" name:"rename-contacts" help:"Renumber contact names across files."`
	RenameFiles    RenameFilesCmd    `cmd:"" name:"rename-files" help:"Copy files under sequential names."`
}

// env is bound into every command's Run.
type env struct {
	ctx context.Context
	vcf usecase.VCFUseCase
	out io.Writer
}

type BuildCmd struct {
	Files       []string `arg:"" help:"TXT, CSV or VCF inputs."`
	PerFile     int      `help:"Contacts per output file; 0 writes a single contacts.vcf keeping source labels." default:"0"`
	FileBase    string   `help:"Base name of split output files." default:"contacts"`
	ContactBase string   `help:"Base name of contacts in split files." default:"Contact"`
	Out         string   `help:"Output directory." default:"." type:"path"`
}

func (c *BuildCmd) Run(e *env) error {
	files, err := readInputs(c.Files)
	if err != nil {
		return err
	}
	if c.PerFile <= 0 {
		var text strings.Builder
		for _, f := range files {
			text.Write(f.Data)
			text.WriteByte('\n')
		}
		out, n, err := e.vcf.ConvertText(e.ctx, text.String())
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		if err := writeOutputs(e.out, c.Out, []model.OutputFile{out}); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%d contacts\n", n)
		return nil
	}

	numbers := e.vcf.ExtractNumbers(e.ctx, files)
	outs, err := e.vcf.GenerateFiles(e.ctx, numbers, model.SplitOptions{
		PerFile:     c.PerFile,
		FileBase:    c.FileBase,
		ContactBase: c.ContactBase,
	})
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := writeOutputs(e.out, c.Out, outs); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d contacts in %d files\n", len(numbers), len(outs))
	return nil
}

type CountCmd struct {
	Files []string `arg:"" help:"Files to count."`
}

func (c *CountCmd) Run(e *env) error {
	files, err := readInputs(c.Files)
	if err != nil {
		return err
	}
	sum := e.vcf.CountFiles(e.ctx, files)
	fmt.Fprintf(e.out, "Files: %d\nContacts: %d\nUnique numbers: %d\n", len(files), sum.Contacts, sum.Unique)
	return nil
}

type AddCmd struct {
	Contact string   `arg:"" help:"Contact as \"Name,Phone\"."`
	Files   []string `arg:"" help:"VCF files to extend."`
	Out     string   `help:"Output directory." default:"." type:"path"`
}

func (c *AddCmd) Run(e *env) error {
	name, number, err := e.vcf.ParseContactLine(c.Contact)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	files, err := readInputs(c.Files)
	if err != nil {
		return err
	}
	outs, err := e.vcf.AddContactToFiles(e.ctx, files, name, number)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return writeOutputs(e.out, c.Out, outs)
}

type RenameContactsCmd struct {
	Base  string   `arg:"" help:"New contact base name."`
	Files []string `arg:"" help:"VCF files to rewrite."`
	Out   string   `help:"Output directory." default:"." type:"path"`
}

func (c *RenameContactsCmd) Run(e *env) error {
	files, err := readInputs(c.Files)
	if err != nil {
		return err
	}
	outs, total := e.vcf.RenameContactsInFiles(e.ctx, files, c.Base)
	if total == 0 {
		return fmt.Errorf("rename-contacts: no contacts found")
	}
	if err := writeOutputs(e.out, c.Out, outs); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d contacts renamed\n", total)
	return nil
}

type RenameFilesCmd struct {
	Base  string   `arg:"" help:"New file base name."`
	Files []string `arg:"" help:"Files to copy."`
	Out   string   `help:"Output directory." default:"." type:"path"`
}

func (c *RenameFilesCmd) Run(e *env) error {
	files, err := readInputs(c.Files)
	if err != nil {
		return err
	}
	outs := e.vcf.RenameFileBatch(e.ctx, files, c.Base)
	for i := range outs {
		fmt.Fprintf(e.out, "%s -> %s\n", files[i].Name, outs[i].Name)
	}
	return writeOutputs(io.Discard, c.Out, outs)
}

func readInputs(paths []string) ([]model.InputFile, error) {
	files := make([]model.InputFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, model.InputFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

func writeOutputs(w io.Writer, dir string, outs []model.OutputFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range outs {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s\n", path)
	}
	return nil
}

func newLogger(verbose bool) *zerolog.Logger {
	if !verbose {
		l := zerolog.Nop()
		return &l
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &l
}

func main() {
	var cli CLI
	parser := kong.Parse(&cli,
		kong.Name("vcftool"),
		kong.Description("Offline VCF builder, counter and renamer."),
		kong.Vars{"version": version + " " + commit},
		kong.UsageOnError(),
	)
	e := &env{
		ctx: context.Background(),
		vcf: usecase.NewVCFUseCase(newLogger(cli.Verbose)),
		out: os.Stdout,
	}
	parser.FatalIfErrorf(parser.Run(e))
}

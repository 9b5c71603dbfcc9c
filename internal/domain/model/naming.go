package model

import (
	"fmt"
	"strings"
)

// NamingPolicy derives a contact display name. seq is the zero-based position
// of the record within the operation; label is whatever name the source
// already carried (possibly empty).
type NamingPolicy interface {
	DisplayName(seq int, label string) string
}

// SequentialNaming yields "<Prefix> <Start+seq>".
type SequentialNaming struct {
	Prefix string
	Start  int
}

func (p SequentialNaming) DisplayName(seq int, _ string) string {
	return fmt.Sprintf("%s %d", strings.TrimSpace(p.Prefix), p.Start+seq)
}

// LabelNaming keeps the source label and falls back to Fallback (or
// UnknownName) when there is none.
type LabelNaming struct {
	Fallback string
}

func (p LabelNaming) DisplayName(_ int, label string) string {
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	if p.Fallback != "" {
		return p.Fallback
	}
	return UnknownName
}

// FileNamingPolicy derives an output file name from its position and old name.
type FileNamingPolicy interface {
	FileName(seq int, old string) string
}

// FileNaming yields "<Base>_<Start+seq>.vcf". A trailing ".vcf" on Base is
// dropped first so "contacts.vcf" and "contacts" behave the same.
type FileNaming struct {
	Base  string
	Start int
}

func (p FileNaming) FileName(seq int, _ string) string {
	base := strings.TrimSpace(p.Base)
	if strings.HasSuffix(strings.ToLower(base), ".vcf") {
		base = base[:len(base)-4]
	}
	return fmt.Sprintf("%s_%d.vcf", base, p.Start+seq)
}

// SanitizeName makes s safe for a single FN line.
func SanitizeName(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(s)
}

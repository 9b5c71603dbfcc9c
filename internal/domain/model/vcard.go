package model

import (
	"bytes"
	"strings"
)

const (
	vcardBegin   = "BEGIN:VCARD"
	vcardEnd     = "END:VCARD"
	vcardVersion = "VERSION:3.0"

	// UnknownName is used when a record or an entry carries no display name.
	UnknownName = "Unknown"
)

// Entry is a single contact source: a raw number or a line of free text.
type Entry struct {
	Value string
}

// ParseEntries turns text into one Entry per non-blank line.
func ParseEntries(text string) []Entry {
	var out []Entry
	text = strings.TrimPrefix(text, "\uFEFF")
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, Entry{Value: line})
	}
	return out
}

// VCard is one contact record.
type VCard struct {
	DisplayName string
	PhoneNumber string
}

// Document is an ordered sequence of vCard records.
type Document struct {
	Cards []VCard
}

func (d Document) Len() int { return len(d.Cards) }

// Names returns the display names in record order.
func (d Document) Names() []string {
	out := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		out[i] = c.DisplayName
	}
	return out
}

// Phones returns the phone numbers in record order.
func (d Document) Phones() []string {
	out := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		out[i] = c.PhoneNumber
	}
	return out
}

// Clone returns a copy whose Cards slice can be modified freely.
func (d Document) Clone() Document {
	cards := make([]VCard, len(d.Cards))
	copy(cards, d.Cards)
	return Document{Cards: cards}
}

// Bytes serializes the document as vCard 3.0 text. An empty document is empty.
func (d Document) Bytes() []byte {
	if len(d.Cards) == 0 {
		return nil
	}
	var b bytes.Buffer
	for _, c := range d.Cards {
		b.WriteString(vcardBegin + "\n")
		b.WriteString(vcardVersion + "\n")
		b.WriteString("FN:" + c.DisplayName + "\n")
		b.WriteString("TEL:" + c.PhoneNumber + "\n")
		b.WriteString(vcardEnd + "\n")
	}
	return b.Bytes()
}

func (d Document) String() string { return string(d.Bytes()) }

// LooksLikeVCF reports whether data contains at least one vCard record.
func LooksLikeVCF(data []byte) bool {
	return bytes.Contains(bytes.ToUpper(data), []byte(vcardBegin))
}

// ParseDocument reads every BEGIN:VCARD..END:VCARD block of data. FN defaults
// to UnknownName; the first TEL property (any parameters) is the phone number.
// Records without a usable TEL are skipped.
func ParseDocument(data []byte) Document {
	var (
		doc     Document
		inCard  bool
		name    string
		phone   string
		hasName bool
	)
	flush := func() {
		if phone != "" {
			if !hasName || name == "" {
				name = UnknownName
			}
			doc.Cards = append(doc.Cards, VCard{DisplayName: name, PhoneNumber: phone})
		}
		inCard, name, phone, hasName = false, "", "", false
	}

	for _, line := range unfold(data) {
		upper := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case upper == vcardBegin:
			if inCard {
				flush()
			}
			inCard = true
			continue
		case upper == vcardEnd:
			if inCard {
				flush()
			}
			continue
		case !inCard:
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = propertyName(key)
		switch {
		case (key == "FN" || strings.HasPrefix(key, "FN;")) && !hasName:
			name, hasName = strings.TrimSpace(value), true
		case (key == "TEL" || strings.HasPrefix(key, "TEL;")) && phone == "":
			if n, ok := NormalizeNumber(value); ok {
				phone = n
			}
		}
	}
	if inCard {
		flush()
	}
	return doc
}

// propertyName upper-cases a content-line key and drops its group prefix, so
// "item1.TEL;type=CELL" reads as "TEL;TYPE=CELL".
func propertyName(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	name, params, hasParams := strings.Cut(key, ";")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if hasParams {
		return name + ";" + params
	}
	return name
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// unfold splits data into logical lines, joining RFC 6350 continuation lines.
// A leading byte order mark is dropped.
func unfold(data []byte) []string {
	data = bytes.TrimPrefix(data, utf8BOM)
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

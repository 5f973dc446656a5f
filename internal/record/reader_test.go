package record_test

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"

	"metmaster/internal/record"
)

func TestReaderStripsBOMAndReadsRows(t *testing.T) {
	input := "\ufeffObject ID,Title,Tags\n1,Vase,Ceramics|Vase\n2,\"Quoted, title\",\n"
	r, err := record.NewReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if got := r.Header()[0]; got != "Object ID" {
		t.Fatalf("expected BOM stripped from header, got %q", got)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v, ok := row.Get("Object ID"); !ok || v != "1" {
		t.Fatalf("unexpected object id %q (%v)", v, ok)
	}
	if row.Line() != 2 {
		t.Fatalf("expected line 2, got %d", row.Line())
	}

	row, err = r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v, _ := row.Get("Title"); v != "Quoted, title" {
		t.Fatalf("unexpected quoted title %q", v)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReaderShortRowLeavesColumnsAbsent(t *testing.T) {
	r, err := record.NewReader(strings.NewReader("Object ID,Title,Is Public Domain\n5,Bowl\n"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, ok := row.Get("Is Public Domain"); ok {
		t.Fatal("expected trailing column to be absent")
	}
	meta, err := row.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := `{"Is Public Domain":null,"Object ID":"5","Title":"Bowl"}`
	if meta != want {
		t.Fatalf("unexpected metadata json\n got: %s\nwant: %s", meta, want)
	}
}

func TestReaderMalformedRowFails(t *testing.T) {
	r, err := record.NewReader(strings.NewReader("Object ID,Title\n1,\"unterminated\n"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	r, err := record.NewReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF on empty input, got %v", err)
	}
}

func TestReaderKeepsBareQuotesLiterally(t *testing.T) {
	input := "Object ID,Title,Medium\n2,Print 5\" x 7\",Ink\n\n3,\"Say \"\"hi\"\"\",\"Oil, canvas\"\n"
	r, err := record.NewReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v, _ := row.Get("Title"); v != `Print 5" x 7"` {
		t.Fatalf("unexpected title %q", v)
	}
	if v, _ := row.Get("Medium"); v != "Ink" {
		t.Fatalf("unexpected medium %q", v)
	}

	row, err = r.Next()
	if err != nil {
		t.Fatalf("Next after blank line: %v", err)
	}
	if v, _ := row.Get("Title"); v != `Say "hi"` {
		t.Fatalf("unexpected escaped title %q", v)
	}
	if v, _ := row.Get("Medium"); v != "Oil, canvas" {
		t.Fatalf("unexpected quoted medium %q", v)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReaderUnterminatedQuoteAfterValidRows(t *testing.T) {
	input := "Object ID,Title\n1,Vase\n2,\"open \"quote\" inside\n"
	r, err := record.NewReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("first row: %v", err)
	}
	_, err = r.Next()
	var parseErr *csv.ParseError
	if !errors.As(err, &parseErr) || !errors.Is(err, csv.ErrQuote) {
		t.Fatalf("expected quote parse error, got %v", err)
	}
	if parseErr.Line != 3 {
		t.Fatalf("expected error on line 3, got %d", parseErr.Line)
	}
}

func TestReaderRejectsInvalidUTF8(t *testing.T) {
	r, err := record.NewReader(strings.NewReader("Object ID,Title\n1,caf\xe9\n"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, record.ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

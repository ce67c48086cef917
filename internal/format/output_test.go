package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type shoppingNote struct {
	Name string `json:"name"`
}

func (n shoppingNote) Markdown() string { return "# Note\n\n**" + n.Name + "**" }

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, shoppingNote{Name: "Milk"}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got shoppingNote
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil || got.Name != "Milk" {
		t.Fatalf("expected JSON round trip, got %q (%v)", buf.String(), err)
	}

	buf.Reset()
	if err := Write(&buf, map[string]int{"a": 1}, "json", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"a\": 1\n") {
		t.Fatalf("expected indented JSON, got %q", buf.String())
	}
}

func TestWrite_Markdown(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	if err := Write(&buf, shoppingNote{Name: "Milk"}, "markdown", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Milk") || !strings.Contains(out, "Note") {
		t.Fatalf("expected rendered markdown, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour with NO_COLOR, got %q", out)
	}
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, 42, "markdown", false); err == nil {
		t.Fatalf("expected error for a value without markdown")
	}
	if err := Write(&buf, 42, "edn", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

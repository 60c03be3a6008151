package tmplfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crm-mailmerge/internal/model"
)

func TestParseWithFrontmatter(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "welcome.html")
	content := "" +
		"---\n" +
		"name: Welcome\n" +
		"subject: \"Welcome [[::Contacts::first_name::]]\"\n" +
		"module: Contacts\n" +
		"attachments:\n" +
		"  - id: note-1\n" +
		"    filename: terms.pdf\n" +
		"---\n" +
		"<p>Dear [[::Contacts::first_name::]],</p>\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	fm := doc.Frontmatter
	if fm.Name != "Welcome" || fm.ParentModule != "Contacts" {
		t.Errorf("unexpected frontmatter: %+v", fm)
	}
	if fm.Subject != "Welcome [[::Contacts::first_name::]]" {
		t.Errorf("subject mismatch: %q", fm.Subject)
	}
	if len(fm.Attachments) != 1 || fm.Attachments[0].Filename != "terms.pdf" {
		t.Errorf("unexpected attachments: %+v", fm.Attachments)
	}
	if want := "<p>Dear [[::Contacts::first_name::]],</p>\n"; doc.Body != want {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", want, doc.Body)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	body := "<p>No frontmatter here.</p>\n"
	doc, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Frontmatter.Subject != "" || len(doc.Frontmatter.Attachments) != 0 {
		t.Fatalf("expected empty frontmatter, got: %+v", doc.Frontmatter)
	}
	if doc.Body != body {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", body, doc.Body)
	}
}

func TestParseBadFrontmatter(t *testing.T) {
	_, err := Parse(strings.NewReader("---\nsubject: [unclosed\n---\nbody\n"))
	if err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestSource(t *testing.T) {
	dir := t.TempDir()
	content := "---\nsubject: Hi\nattachments:\n  - id: n1\n    filename: a.pdf\n---\nBody\n"
	if err := os.WriteFile(filepath.Join(dir, "hello.html"), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	src := Source{Dir: dir}
	ctx := context.Background()

	tmpl, err := src.FetchTemplate(ctx, "hello.html")
	if err != nil {
		t.Fatalf("FetchTemplate: %v", err)
	}
	if tmpl.Name != "hello" || tmpl.Subject != "Hi" || tmpl.BodyHTML != "Body\n" {
		t.Errorf("unexpected template: %+v", tmpl)
	}

	atts, err := src.FetchAttachments(ctx, "hello.html")
	if err != nil {
		t.Fatalf("FetchAttachments: %v", err)
	}
	if len(atts) != 1 || atts[0].ID != "n1" || atts[0].Filename != "a.pdf" {
		t.Errorf("unexpected attachments: %+v", atts)
	}

	if _, err := src.FetchTemplate(ctx, "missing.html"); !errors.Is(err, model.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

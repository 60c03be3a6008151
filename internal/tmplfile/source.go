package tmplfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"crm-mailmerge/internal/model"
)

// Source serves templates from files. Template ids are paths, relative to Dir
// unless absolute.
type Source struct {
	Dir string
}

func (s Source) path(id string) string {
	if filepath.IsAbs(id) || s.Dir == "" {
		return id
	}
	return filepath.Join(s.Dir, id)
}

// FetchTemplate reads the template file named by id.
func (s Source) FetchTemplate(_ context.Context, id string) (model.EmailTemplate, error) {
	doc, err := ParseFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return model.EmailTemplate{}, fmt.Errorf("%w: %s", model.ErrTemplateNotFound, id)
	}
	if err != nil {
		return model.EmailTemplate{}, fmt.Errorf("read template: %w", err)
	}
	name := doc.Frontmatter.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
	}
	return model.EmailTemplate{
		ID:           id,
		Name:         name,
		Subject:      strings.TrimSpace(doc.Frontmatter.Subject),
		BodyHTML:     doc.Body,
		ParentModule: doc.Frontmatter.ParentModule,
	}, nil
}

// FetchAttachments returns the attachments listed in the template frontmatter.
func (s Source) FetchAttachments(_ context.Context, id string) ([]model.Attachment, error) {
	doc, err := ParseFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	out := make([]model.Attachment, 0, len(doc.Frontmatter.Attachments))
	for _, a := range doc.Frontmatter.Attachments {
		out = append(out, model.Attachment{ID: a.ID, Filename: a.Filename})
	}
	return out, nil
}

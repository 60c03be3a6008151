package resolve

import (
	"context"

	"crm-mailmerge/internal/model"
)

// RecordSource fetches records related to a subject record through a link.
type RecordSource interface {
	FetchRelated(ctx context.Context, module, id, link string, limit int) ([]model.Record, error)
}

// TemplateSource loads a template and the files attached to it.
type TemplateSource interface {
	FetchTemplate(ctx context.Context, id string) (model.EmailTemplate, error)
	FetchAttachments(ctx context.Context, templateID string) ([]model.Attachment, error)
}

// MetadataProvider returns field definitions for a module.
type MetadataProvider interface {
	FieldMetadata(ctx context.Context, module string) (model.FieldMap, error)
}

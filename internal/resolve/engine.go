// Package resolve resolves template placeholders against a subject record and
// the records linked to it.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"crm-mailmerge/internal/format"
	"crm-mailmerge/internal/model"
	"crm-mailmerge/internal/placeholder"
	"crm-mailmerge/internal/render"
)

// DefaultRelatedLimit is how many related records are requested per link.
// Placeholders assume to-one relationships, so only the first is used.
const DefaultRelatedLimit = 1

// ErrNoSubject is returned when the subject record has no module or id.
var ErrNoSubject = errors.New("resolve: subject record must have a module and id")

// Engine resolves templates. It holds no per-template state and is safe to
// share; each call runs its own Session.
type Engine struct {
	records      RecordSource
	templates    TemplateSource
	meta         MetadataProvider
	locale       format.Locale
	relatedLimit int
}

// NewEngine wires the engine to its record, template, metadata and locale capabilities.
func NewEngine(records RecordSource, templates TemplateSource, meta MetadataProvider, locale format.Locale) *Engine {
	return &Engine{
		records:      records,
		templates:    templates,
		meta:         meta,
		locale:       locale,
		relatedLimit: DefaultRelatedLimit,
	}
}

// WithRelatedLimit overrides how many related records each link fetch asks for.
func (e *Engine) WithRelatedLimit(n int) *Engine {
	e2 := *e
	if n > 0 {
		e2.relatedLimit = n
	}
	return &e2
}

type templateLoaded struct {
	tmpl model.EmailTemplate
	err  error
}

type attachmentsLoaded struct {
	atts []model.Attachment
	err  error
}

type relatedLoaded struct {
	link    string
	records []model.Record
	err     error
}

// Compose resolves templateID against subject and renders the result.
func (e *Engine) Compose(ctx context.Context, subject model.Record, templateID string) (render.Payload, error) {
	sess, err := e.Resolve(ctx, subject, templateID)
	if err != nil {
		return render.Payload{}, err
	}
	return render.Build(sess.Subject, sess.Template, sess.Descriptors, sess.Attachments), nil
}

// Resolve runs a session to completion: the template and its attachments are
// fetched concurrently, placeholders are classified once the template
// arrives, and one fetch per distinct link is issued. Every fetch reports
// back on a single channel that only this goroutine reads, so session state
// is never touched concurrently. Resolve returns once all fetches have
// reported, or with ctx.Err() if ctx ends first.
func (e *Engine) Resolve(ctx context.Context, subject model.Record, templateID string) (*Session, error) {
	if subject.Module == "" || subject.ID == "" {
		return nil, ErrNoSubject
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := NewSession(subject, templateID)
	log := slog.With("session", sess.ID, "module", subject.Module, "record", subject.ID, "template", templateID)

	events := make(chan any)
	post := func(ev any) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		t, err := e.templates.FetchTemplate(ctx, templateID)
		post(templateLoaded{tmpl: t, err: err})
	}()
	go func() {
		atts, err := e.templates.FetchAttachments(ctx, templateID)
		post(attachmentsLoaded{atts: atts, err: err})
	}()

	env := format.NewEnv(ctx, e.locale, subject)

	for !sess.Complete() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case templateLoaded:
				if ev.err != nil {
					return nil, fmt.Errorf("fetch template %s: %w", templateID, ev.err)
				}
				sess.loadTemplate(ev.tmpl, e.linkResolver(ctx, sess))
				e.classify(ctx, sess, env)
				log.Debug("template parsed", "placeholders", len(sess.Descriptors), "links", sess.Requested())
				for _, l := range sess.Links() {
					go func(link string) {
						recs, err := e.records.FetchRelated(ctx, subject.Module, subject.ID, link, e.relatedLimit)
						post(relatedLoaded{link: link, records: recs, err: err})
					}(l.Name)
				}
			case attachmentsLoaded:
				if ev.err != nil {
					log.Warn("fetch attachments failed", "error", ev.err)
				}
				sess.applyAttachments(ev.atts)
			case relatedLoaded:
				if ev.err != nil {
					log.Warn("fetch related failed", "link", ev.link, "error", ev.err)
				}
				sess.applyRelated(ev.link, ev.records, env)
				log.Debug("related fetched", "link", ev.link, "records", len(ev.records), "completed", sess.Completed(), "requested", sess.Requested())
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

// classify fills direct values and registers the links related placeholders need.
// Placeholders owned by another module than the subject are left empty.
func (e *Engine) classify(ctx context.Context, s *Session, env format.Env) {
	subjectFields := e.fields(ctx, s, s.Subject.Module)
	for i := range s.Descriptors {
		d := &s.Descriptors[i]
		if d.OwnerModule != s.Subject.Module {
			continue
		}
		if !d.IsRelated() {
			def, ok := subjectFields.Lookup(d.Field)
			if !ok {
				continue
			}
			d.FieldType = def.Type
			d.Value = format.Value(s.Subject.Get(d.Field), def, env)
			continue
		}

		related, seen := s.links[d.Link]
		if !seen {
			related = RelatedModule(subjectFields, d.Link)
			s.register(d.Link, related)
		}
		d.RelatedModule = related
		d.Pending = true
		if def, ok := e.fields(ctx, s, related).Lookup(d.Field); ok {
			d.FieldType = def.Type
			s.relatedDefs[i] = def
		}
	}
}

func (e *Engine) linkResolver(ctx context.Context, s *Session) placeholder.LinkFunc {
	return func(owner, token string) string {
		if owner != s.Subject.Module {
			return token
		}
		return CanonicalLink(e.fields(ctx, s, owner), token)
	}
}

// fields returns module metadata, loading it once per session. A failed load
// is remembered as empty so every field on that module counts as unknown.
func (e *Engine) fields(ctx context.Context, s *Session, module string) model.FieldMap {
	if module == "" || e.meta == nil {
		return nil
	}
	if fm, ok := s.fields[module]; ok {
		return fm
	}
	fm, err := e.meta.FieldMetadata(ctx, module)
	if err != nil {
		slog.Warn("resolve: field metadata unavailable", "session", s.ID, "module", module, "error", err)
		fm = model.FieldMap{}
	}
	s.fields[module] = fm
	return fm
}

package resolve

import (
	"crm-mailmerge/internal/format"
	"crm-mailmerge/internal/model"
	"crm-mailmerge/internal/placeholder"

	"github.com/google/uuid"
)

// Link is one entry of the related-fetch request set.
type Link struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// Session is the state of resolving one template against one subject record.
// It is owned by a single goroutine, the engine loop, and is never shared.
type Session struct {
	ID          string
	Subject     model.Record
	TemplateID  string
	Template    model.EmailTemplate
	Descriptors []placeholder.Descriptor
	Attachments []model.Attachment

	links     map[string]string
	linkOrder []string
	requested int
	completed int

	templateLoaded  bool
	attachmentsDone bool

	// field definitions of pending related descriptors, by descriptor index
	relatedDefs map[int]model.FieldDef
	fields      map[string]model.FieldMap
}

// NewSession starts an empty session for subject and templateID.
func NewSession(subject model.Record, templateID string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Subject:     subject,
		TemplateID:  templateID,
		links:       map[string]string{},
		relatedDefs: map[int]model.FieldDef{},
		fields:      map[string]model.FieldMap{},
	}
}

// register adds link to the fetch set unless already present. The first
// registration decides the target module.
func (s *Session) register(link, module string) bool {
	if _, ok := s.links[link]; ok {
		return false
	}
	s.links[link] = module
	s.linkOrder = append(s.linkOrder, link)
	s.requested++
	return true
}

// Links returns the distinct links registered for fetching, in discovery order.
func (s *Session) Links() []Link {
	out := make([]Link, 0, len(s.linkOrder))
	for _, name := range s.linkOrder {
		out = append(out, Link{Name: name, Module: s.links[name]})
	}
	return out
}

// Requested is the number of related fetches issued.
func (s *Session) Requested() int { return s.requested }

// Completed is the number of related fetches whose result has been applied.
func (s *Session) Completed() int { return s.completed }

// Complete reports whether every issued fetch has reported back.
func (s *Session) Complete() bool {
	return s.templateLoaded && s.attachmentsDone && s.completed == s.requested
}

func (s *Session) loadTemplate(t model.EmailTemplate, resolveLink placeholder.LinkFunc) {
	s.Template = t
	s.Descriptors = placeholder.ParseAll(t.Text(), resolveLink)
	s.templateLoaded = true
}

func (s *Session) applyAttachments(atts []model.Attachment) {
	s.Attachments = atts
	s.attachmentsDone = true
}

// applyRelated copies values from the first fetched record into every pending
// descriptor that targets the record's module. The completion counter moves
// whether or not anything matched, so failed or empty fetches never stall.
func (s *Session) applyRelated(link string, recs []model.Record, env format.Env) {
	defer func() { s.completed++ }()
	if len(recs) == 0 {
		return
	}
	rec := recs[0]
	module := rec.Module
	if module == "" {
		module = s.links[link]
	}
	if module == "" {
		return
	}
	for i := range s.Descriptors {
		d := &s.Descriptors[i]
		if !d.Pending || d.RelatedModule != module {
			continue
		}
		d.Pending = false
		def, ok := s.relatedDefs[i]
		if !ok {
			continue
		}
		d.Value = format.Value(rec.Get(d.Field), def, env)
	}
}

package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-mailmerge/internal/model"
	"crm-mailmerge/internal/placeholder"
	"crm-mailmerge/internal/render"
)

func TestReplace(t *testing.T) {
	t.Parallel()

	t.Run("resolved value", func(t *testing.T) {
		t.Parallel()
		ds := []placeholder.Descriptor{{FullMatch: "[[::Contacts::first_name::]]", Value: "Ana"}}
		assert.Equal(t, "Hi Ana", render.Replace("Hi [[::Contacts::first_name::]]", ds))
	})

	t.Run("unresolved descriptor blanks", func(t *testing.T) {
		t.Parallel()
		ds := []placeholder.Descriptor{{FullMatch: "[[::Leads::name::]]"}}
		assert.Equal(t, "Hi ", render.Replace("Hi [[::Leads::name::]]", ds))
	})

	t.Run("malformed left verbatim", func(t *testing.T) {
		t.Parallel()
		text := "A [[::OnlyOnePart::]] B [[::Contacts::first_name::]]"
		ds := placeholder.ParseAll(text, nil)
		ds[0].Value = "Ana"
		assert.Equal(t, "A [[::OnlyOnePart::]] B Ana", render.Replace(text, ds))
	})

	t.Run("first occurrence per descriptor", func(t *testing.T) {
		t.Parallel()
		ds := []placeholder.Descriptor{
			{FullMatch: "[[::A::x::]]", Value: "1"},
			{FullMatch: "[[::A::x::]]", Value: "2"},
		}
		assert.Equal(t, "1 2 [[::A::x::]]", render.Replace("[[::A::x::]] [[::A::x::]] [[::A::x::]]", ds))
	})

	t.Run("descriptor missing from text is skipped", func(t *testing.T) {
		t.Parallel()
		ds := []placeholder.Descriptor{{FullMatch: "[[::A::body_only::]]", Value: "v"}}
		assert.Equal(t, "Subject line", render.Replace("Subject line", ds))
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	subject := model.NewRecord("Contacts", "c1", map[string]any{"email1": "ana@example.com"})
	tmpl := model.EmailTemplate{
		ID:       "t1",
		Subject:  "Welcome [[::Contacts::first_name::]]",
		BodyHTML: "<p>Dear [[::Contacts::first_name::]],</p><p>Tom &amp; team</p>",
	}
	ds := placeholder.ParseAll(tmpl.Text(), nil)
	require.Len(t, ds, 2)
	for i := range ds {
		ds[i].Value = "Ana"
	}
	atts := []model.Attachment{{ID: "n1", Filename: "brochure.pdf"}}

	p := render.Build(subject, tmpl, ds, atts)

	assert.Equal(t, "Welcome Ana", p.Subject)
	assert.Equal(t, "<p>Dear Ana,</p><p>Tom &amp; team</p>", p.BodyHTML)
	assert.Equal(t, "Dear Ana,Tom & team", p.Body)
	assert.Equal(t, render.RecordRef{Module: "Contacts", ID: "c1"}, p.Related)
	require.Len(t, p.ToAddresses, 1)
	assert.Equal(t, "ana@example.com", p.ToAddresses[0].Email)
	assert.Equal(t, []render.Attachment{{
		ID: "n1", Name: "brochure.pdf", NameForDisplay: "brochure.pdf", Tag: "template", Type: "template",
	}}, p.Attachments)
}

func TestFormatAttachmentsEmpty(t *testing.T) {
	t.Parallel()

	out := render.FormatAttachments(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

// Package tmplfile reads email templates kept as files: YAML frontmatter for
// the subject and attachments, HTML body below it.
package tmplfile

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a template file split into frontmatter and body.
type Document struct {
	Frontmatter Frontmatter
	Body        string
}

// Frontmatter holds the template fields that do not belong in the body.
type Frontmatter struct {
	Name         string           `yaml:"name"`
	Subject      string           `yaml:"subject"`
	ParentModule string           `yaml:"module"`
	Attachments  []AttachmentSpec `yaml:"attachments"`
}

// AttachmentSpec names a note already stored in the CRM.
type AttachmentSpec struct {
	ID       string `yaml:"id"`
	Filename string `yaml:"filename"`
}

// ParseFile reads a template file. Frontmatter is optional and sits between
// two lines containing only "---".
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a template document from r.
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	peek, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	hasFM := string(peek) == "---"

	var fmBuf strings.Builder
	var bodyBuf strings.Builder

	if hasFM {
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, err
		}
		for {
			l, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == "---" {
				break
			}
			fmBuf.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
	}
	for {
		l, err := br.ReadString('\n')
		bodyBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}
	}

	d := Document{Body: bodyBuf.String()}
	if hasFM {
		if err := yaml.Unmarshal([]byte(fmBuf.String()), &d.Frontmatter); err != nil {
			return Document{}, err
		}
	}
	return d, nil
}

package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"checklist-cli/internal/model"
)

type WriteOptions struct {
	Overwrite bool
	// HTML also writes a standalone .html page next to each markdown file.
	HTML   bool
	Render RenderOptions
}

type WriteResult struct {
	Written []string `json:"written" yaml:"written"`
}

// WriteTemplate exports a template to <toDir>/templates/<id>-<slug>.md.
func WriteTemplate(tpl model.Template, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	outDir := filepath.Join(filepath.Clean(toDir), "templates")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	base := slug(tpl.Name)
	if tpl.ID != nil {
		base = strconv.FormatInt(*tpl.ID, 10) + "-" + base
	}
	md := RenderTemplateMarkdown(tpl, opt.Render)
	return writeDoc(filepath.Join(outDir, base), tpl.Name, md, opt)
}

// WriteRevisions exports each revision to <toDir>/revisions/<template>/r<n>.md.
func WriteRevisions(templateID int64, revs []model.Revision, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	outDir := filepath.Join(filepath.Clean(toDir), "revisions", strconv.FormatInt(templateID, 10))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	var res WriteResult
	for _, rev := range revs {
		r, err := writeDoc(filepath.Join(outDir, fmt.Sprintf("r%d", rev.RevisionNumber)),
			fmt.Sprintf("Revision %d", rev.RevisionNumber), RenderRevisionMarkdown(rev), opt)
		if err != nil {
			return WriteResult{}, err
		}
		res.Written = append(res.Written, r.Written...)
	}
	return res, nil
}

func writeDoc(pathNoExt, title, md string, opt WriteOptions) (WriteResult, error) {
	mdPath := pathNoExt + ".md"
	if err := writeFile(mdPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{mdPath}
	if opt.HTML {
		page, err := RenderHTML(title, md)
		if err != nil {
			return WriteResult{}, err
		}
		htmlPath := pathNoExt + ".html"
		if err := writeFile(htmlPath, []byte(page), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, htmlPath)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "template"
	}
	return s
}

package reporters

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/corey/lintpipe/internal/ports"
)

// Raw writes the report's paths as indented JSON: path -> diagnostics.
type Raw struct {
	out io.Writer
}

// Publish implements ports.Reporter.
func (r *Raw) Publish(rep *ports.Report) error {
	paths := rep.Paths
	if paths == nil {
		paths = map[string][]ports.Diagnostic{}
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(paths)
}

// CSV writes one row per diagnostic under a fixed header.
type CSV struct {
	out io.Writer
}

// Publish implements ports.Reporter.
func (c *CSV) Publish(rep *ports.Report) error {
	w := csv.NewWriter(c.out)
	if err := w.Write([]string{"path", "lineNumber", "lineNumberEnd", "level", "message"}); err != nil {
		return err
	}
	for _, path := range rep.SortedPaths() {
		for _, d := range rep.Paths[path] {
			msg := d.Message
			if d.Context != "" {
				msg += " " + d.Context
			}
			row := []string{
				path,
				strconv.Itoa(d.LineNumber),
				strconv.Itoa(endLine(d)),
				string(d.Level),
				msg,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

type jslintIssue struct {
	Line     int    `xml:"line,attr"`
	LineEnd  int    `xml:"lineEnd,attr"`
	Reason   string `xml:"reason,attr"`
	Evidence string `xml:"evidence,attr"`
}

type jslintFile struct {
	Name   string        `xml:"name,attr"`
	Issues []jslintIssue `xml:"issue"`
}

type jslintDoc struct {
	XMLName xml.Name     `xml:"jslint"`
	Files   []jslintFile `xml:"file"`
}

// JSLint writes the JSLint XML format understood by CI dashboards.
type JSLint struct {
	out io.Writer
}

// Publish implements ports.Reporter.
func (j *JSLint) Publish(rep *ports.Report) error {
	var doc jslintDoc
	for _, path := range rep.SortedPaths() {
		f := jslintFile{Name: path}
		for _, d := range rep.Paths[path] {
			f.Issues = append(f.Issues, jslintIssue{
				Line:     d.LineNumber,
				LineEnd:  endLine(d),
				Reason:   "[" + string(d.Level) + "] " + d.Message,
				Evidence: d.Context,
			})
		}
		doc.Files = append(doc.Files, f)
	}
	return writeXML(j.out, doc)
}

type checkstyleError struct {
	Line     int    `xml:"line,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleDoc struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

// Checkstyle writes Checkstyle 4.3 XML.
type Checkstyle struct {
	out io.Writer
}

// Publish implements ports.Reporter.
func (c *Checkstyle) Publish(rep *ports.Report) error {
	doc := checkstyleDoc{Version: "4.3"}
	for _, path := range rep.SortedPaths() {
		f := checkstyleFile{Name: path}
		for _, d := range rep.Paths[path] {
			severity := "warning"
			if d.Level == ports.LevelError {
				severity = "error"
			}
			msg := d.Message
			if d.Context != "" {
				msg += "; " + d.Context
			}
			f.Errors = append(f.Errors, checkstyleError{
				Line:     d.LineNumber,
				Severity: severity,
				Message:  msg,
				Source:   "lintpipe." + d.Rule,
			})
		}
		doc.Files = append(doc.Files, f)
	}
	return writeXML(c.out, doc)
}

func writeXML(out io.Writer, doc any) error {
	if _, err := io.WriteString(out, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}

// Package mias reads the ground truth file of the MIAS mammogram database
// and files images into Normal/Abnormal directories accordingly.
//
// Each non-empty line of the file describes one image:
//
//	mdb001 G CIRC B 535 425 197
//	mdb003 D NORM
//
// The fields are the reference number, background tissue, abnormality class,
// severity and, for abnormal images, the centre and radius of the lesion.
// Only the first three fields are required.
package mias

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const normalClass = "NORM"

// Class is the diagnostic label used to split output directories.
type Class int

const (
	Normal Class = iota
	Abnormal
)

func (c Class) String() string {
	if c == Normal {
		return "Normal"
	}
	return "Abnormal"
}

// Record is one ground truth entry. An image can have several records when
// it shows more than one lesion.
type Record struct {
	ID          string
	Tissue      string
	Abnormality string
	Severity    string
}

// Class maps the abnormality field to Normal or Abnormal.
func (r Record) Class() Class {
	if r.Abnormality == normalClass {
		return Normal
	}
	return Abnormal
}

// Answers maps image references to their class.
type Answers map[string]Class

// ParseAnswers reads a ground truth file.
func ParseAnswers(r io.Reader) (Answers, error) {
	answers := make(Answers)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: expected at least 3 fields, got %d", lineNo, len(fields))
		}
		rec := Record{ID: fields[0], Tissue: fields[1], Abnormality: fields[2]}
		if len(fields) > 3 {
			rec.Severity = fields[3]
		}
		// Any abnormal record marks the whole image abnormal.
		if prev, ok := answers[rec.ID]; !ok || prev == Normal {
			answers[rec.ID] = rec.Class()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}
	return answers, nil
}

// LoadAnswers reads a ground truth file from disk.
func LoadAnswers(path string) (Answers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening answers file: %w", err)
	}
	defer f.Close()
	return ParseAnswers(f)
}

// Lookup returns the class of the image stored under path, matching on the
// file name without extension.
func (a Answers) Lookup(path string) (Class, bool) {
	base := filepath.Base(path)
	c, ok := a[strings.TrimSuffix(base, filepath.Ext(base))]
	return c, ok
}

// Dir returns the directory an output for input should be written to:
// root/Normal or root/Abnormal for known images and root otherwise.
func (a Answers) Dir(root, input string) string {
	if c, ok := a.Lookup(input); ok {
		return filepath.Join(root, c.String())
	}
	return root
}

// SortDir moves every file in dir whose name matches an answer into the
// Normal or Abnormal subdirectory. It returns the references for which no
// file was found.
func (a Answers) SortDir(dir string) ([]string, error) {
	for _, c := range []Class{Normal, Abnormal} {
		if err := os.MkdirAll(filepath.Join(dir, c.String()), 0o755); err != nil {
			return nil, fmt.Errorf("creating class directory: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	found := make(map[string]bool, len(a))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		c, ok := a.Lookup(e.Name())
		if !ok {
			continue
		}
		src := filepath.Join(dir, e.Name())
		dst := filepath.Join(dir, c.String(), e.Name())
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("moving %s: %w", src, err)
		}
		found[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = true
	}

	var missing []string
	for id := range a {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

package brokerapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
)

// Attachment is a file uploaded with a mutation, such as a property photo or a
// license scan.
type Attachment struct {
	Field    string
	FileName string
	Content  io.Reader
}

// Payload is the body of a create or update request.
type Payload struct {
	Fields map[string]any
	Files  []Attachment
}

// AttachFile opens path and adds it under field. The file is read when the
// payload is encoded.
func (p *Payload) AttachFile(field, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read attachment %s: %w", field, err)
	}
	p.Files = append(p.Files, Attachment{
		Field:    field,
		FileName: filepath.Base(path),
		Content:  bytes.NewReader(data),
	})
	return nil
}

// Encode renders the payload as JSON, or as multipart/form-data when files
// are attached. It returns the body and its content type.
func (p Payload) Encode() (io.Reader, string, error) {
	if len(p.Files) == 0 {
		fields := p.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		body, err := json.Marshal(fields)
		if err != nil {
			return nil, "", fmt.Errorf("encode payload: %w", err)
		}
		return bytes.NewReader(body), "application/json", nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writer.WriteField(k, formFieldValue(p.Fields[k])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, file := range p.Files {
		part, err := writer.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", file.Field, err)
		}
		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", fmt.Errorf("copy file part %s: %w", file.Field, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func formFieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

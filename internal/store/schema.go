package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "templateId", "personalInfo", "sections"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "templateId": {"type": "string"},
    "personalInfo": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "email": {"type": "string"},
        "phone": {"type": "string"},
        "location": {"type": "string"},
        "website": {"type": "string"},
        "linkedin": {"type": "string"},
        "github": {"type": "string"},
        "summary": {"type": "string"}
      }
    },
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "items"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "type": {"type": "string"},
          "content": {"type": "string"},
          "items": {"type": "array"},
          "visible": {"type": "boolean"},
          "required": {"type": "boolean"}
        }
      }
    },
    "createdAt": {"type": "string"},
    "updatedAt": {"type": "string"},
    "jobDescription": {"type": "string"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

// ValidateSnapshot 校验快照文本是否符合简历文档结构。
func ValidateSnapshot(data []byte) error {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(snapshotSchema))
	})
	if schemaErr != nil {
		return fmt.Errorf("compile snapshot schema: %w", schemaErr)
	}

	res, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate snapshot: %w", err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("snapshot schema validation failed: %s", strings.Join(msgs, "; "))
}

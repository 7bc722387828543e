package api

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Request bodies for the assess endpoints are validated against JSON Schemas
// before decoding, so malformed input is rejected with a precise message
// instead of a zero-valued struct.

const loginSchemaJSON = `{
	"type": "object",
	"required": ["user", "context"],
	"properties": {
		"user": {
			"type": "object",
			"required": ["id"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"device_fingerprints": {
					"type": "array",
					"items": {"type": "string"}
				}
			}
		},
		"context": {
			"type": "object",
			"properties": {
				"ip_address": {"type": "string"},
				"user_agent": {"type": "string"},
				"device_fingerprint": {"type": "string"},
				"location": {"type": "string"}
			}
		}
	}
}`

const transactionSchemaJSON = `{
	"type": "object",
	"required": ["user", "transaction"],
	"properties": {
		"user": {
			"type": "object",
			"required": ["id"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"device_fingerprints": {
					"type": "array",
					"items": {"type": "string"}
				}
			}
		},
		"transaction": {
			"type": "object",
			"required": ["amount"],
			"properties": {
				"amount": {"type": "number", "exclusiveMinimum": 0},
				"payment_method": {"type": "string"}
			}
		},
		"context": {
			"type": "object",
			"properties": {
				"ip_address": {"type": "string"},
				"user_agent": {"type": "string"},
				"device_fingerprint": {"type": "string"},
				"location": {"type": "string"}
			}
		}
	}
}`

const authRequirementsSchemaJSON = `{
	"type": "object",
	"required": ["risk_score"],
	"properties": {
		"risk_score": {"type": "number"}
	}
}`

var (
	loginSchema            = mustCompileSchema("login.json", loginSchemaJSON)
	transactionSchema      = mustCompileSchema("transaction.json", transactionSchemaJSON)
	authRequirementsSchema = mustCompileSchema("auth_requirements.json", authRequirementsSchemaJSON)
)

func mustCompileSchema(name, raw string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(raw)))
	if err != nil {
		panic(fmt.Sprintf("mustCompileSchema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("mustCompileSchema %s: %v", name, err))
	}
	sch, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("mustCompileSchema %s: %v", name, err))
	}
	return sch
}

// validateBody checks raw JSON against a compiled schema. Returns a
// caller-facing message on failure.
func validateBody(sch *jsonschema.Schema, raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if err := sch.Validate(doc); err != nil {
		return err
	}
	return nil
}

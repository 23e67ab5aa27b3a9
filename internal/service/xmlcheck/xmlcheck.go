// Package xmlcheck checks input documents for well-formedness and schema conformance.
package xmlcheck

import (
	"context"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
	"github.com/ougirez/certzone/internal/pkg/logger"
)

type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

type Kind string

const (
	KindNone       Kind = ""
	KindIO         Kind = "io"
	KindSyntax     Kind = "syntax"
	KindSchemaLoad Kind = "schema_load"
	KindSchema     Kind = "schema"
)

type CheckResult struct {
	Status  Status   `json:"status"`
	Kind    Kind     `json:"kind,omitempty"`
	Message string   `json:"message"`
	Log     []string `json:"log,omitempty"`
}

func (r CheckResult) OK() bool {
	return r.Status == StatusOK
}

func ok(msg string) CheckResult {
	return CheckResult{Status: StatusOK, Message: msg}
}

func failed(kind Kind, msg string, log ...string) CheckResult {
	return CheckResult{Status: StatusError, Kind: kind, Message: msg, Log: log}
}

// Report holds both checks, so a caller can tell a broken file from a non-conforming one.
type Report struct {
	Syntax CheckResult `json:"syntax"`
	Schema CheckResult `json:"schema"`
}

func (r Report) OK() bool {
	return r.Syntax.OK() && r.Schema.OK()
}

// Kinds lists the failure kinds in check order.
func (r Report) Kinds() []Kind {
	var kinds []Kind
	for _, c := range []CheckResult{r.Syntax, r.Schema} {
		if !c.OK() {
			kinds = append(kinds, c.Kind)
		}
	}
	return kinds
}

type Validator struct {
	schemaPath string
	filePath   string
}

func NewValidator(schemaPath, filePath string) *Validator {
	return &Validator{schemaPath: schemaPath, filePath: filePath}
}

func (v *Validator) CheckSyntax(ctx context.Context) CheckResult {
	f, err := os.Open(v.filePath)
	if err != nil {
		logger.Errorf(ctx, "file system error: %s", err.Error())
		return failed(KindIO, err.Error())
	}
	defer f.Close()

	doc := etree.NewDocument()
	if _, err = doc.ReadFrom(f); err != nil {
		logger.Errorf(ctx, "XML syntax error: %s", err.Error())
		return failed(KindSyntax, err.Error())
	}
	if doc.Root() == nil {
		logger.Error(ctx, "XML syntax error: document has no root element")
		return failed(KindSyntax, "document has no root element")
	}

	logger.Info(ctx, "XML syntax ok")
	return ok("well-formed")
}

func (v *Validator) CheckSchema(ctx context.Context) CheckResult {
	schema, err := xsd.LoadFile(v.schemaPath)
	if err != nil {
		logger.Errorf(ctx, "schema %s could not be loaded: %s", v.schemaPath, err.Error())
		return failed(KindSchemaLoad, err.Error())
	}

	err = schema.ValidateFile(v.filePath)
	if err == nil {
		logger.Info(ctx, "XML conforms to the schema")
		return ok("conforms to schema")
	}

	logger.Error(ctx, "XML does not conform to the XSD schema")

	validations, isList := xsderrors.AsValidations(err)
	if !isList {
		line := fmt.Sprintf("Строка: 0. Ошибка: %s", err.Error())
		logger.Error(ctx, line)
		return failed(KindSchema, "schema validation failed", line)
	}

	lines := make([]string, 0, len(validations))
	for _, val := range validations {
		line := fmt.Sprintf("Строка: %d. Ошибка: %s", val.Line, describe(val))
		logger.Error(ctx, line)
		lines = append(lines, line)
	}

	return failed(KindSchema, "schema validation failed", lines...)
}

// Validate runs both checks, it does not stop at the first failure.
func (v *Validator) Validate(ctx context.Context) Report {
	report := Report{
		Syntax: v.CheckSyntax(ctx),
		Schema: v.CheckSchema(ctx),
	}

	if report.OK() {
		logger.Info(ctx, "XML validation passed")
	} else {
		logger.Errorf(ctx, "XML validation failed: %v", report.Kinds())
	}

	return report
}

func describe(v xsderrors.Validation) string {
	msg := v.Message
	if v.Path != "" {
		msg += " (" + v.Path + ")"
	}
	return msg
}

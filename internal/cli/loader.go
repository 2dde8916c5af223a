package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/poserig/combokeys/internal/compiler"
)

// Error codes reported by CLI commands.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeNotFound       = "E002" // Path not found
	ErrCodeNotCUE         = "E003" // Not a CUE file
	ErrCodeCompileFailed  = "E004" // CUE compile failed
	ErrCodeInvalidDoc     = "E005" // Document validation failed
	ErrCodeStoreFailed    = "E006" // Snapshot store error
	ErrCodeScenarioFailed = "E007" // Scenario execution error
)

// LoadError is an error that occurred while loading a rig document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocument reads, compiles, and validates a rig document from a
// .cue file. The document struct is expected under the top-level
// "document" field.
func LoadDocument(path string) (*compiler.Document, *LoadError) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing document: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotCUE, Message: fmt.Sprintf("not a file: %s", path)}
	}
	if filepath.Ext(path) != ".cue" {
		return nil, &LoadError{Code: ErrCodeNotCUE, Message: fmt.Sprintf("not a CUE file: %s", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading document: %v", err)}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, compileLoadError(err)
	}

	docVal := v.LookupPath(cue.ParsePath("document"))
	if !docVal.Exists() {
		return nil, &LoadError{
			Code:    ErrCodeInvalidDoc,
			Message: "no top-level \"document\" field",
			Pos:     v.Pos(),
		}
	}

	doc, err := compiler.CompileDocument(docVal)
	if err != nil {
		return nil, compileLoadError(err)
	}
	return doc, nil
}

// compileLoadError converts compiler and CUE errors into LoadErrors,
// preserving source positions where available.
func compileLoadError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := ErrCodeInvalidDoc
		if compileErr.Field == "cue" {
			code = ErrCodeCompileFailed
		}
		message := compileErr.Message
		if compileErr.Field != "" && compileErr.Field != "cue" {
			message = fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message)
		}
		return &LoadError{Code: code, Message: message, Pos: compileErr.Pos}
	}
	return &LoadError{Code: ErrCodeCompileFailed, Message: err.Error()}
}

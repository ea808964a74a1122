package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]int{"target_count": 3})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"target_count": float64(3)}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "src/thrift/BUILD.cue", "line": "4"}
	err := formatter.Error("E103", `unknown field "thrift_verison"`, details)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E103", resp.Error.Code)
	assert.Equal(t, `unknown field "thrift_verison"`, resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("E005", "target :svc not found", "BUILD.yaml"))
			assert.Contains(t, buf.String(), "Error [E005]: target :svc not found")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: BUILD.yaml")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("Compiled %s", "python_thrift_library(:svc)")
	assert.Empty(t, out.String(), "verbose logs must not corrupt JSON output")
	assert.Equal(t, "Compiled python_thrift_library(:svc)\n", errOut.String())
	assert.Same(t, errOut, formatter.GetErrWriter())
}

func TestOutputFormatter_VerboseLogDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	formatter.VerboseLog("Compiled %s", "svc")
	assert.Empty(t, buf.String())
	assert.Same(t, buf, formatter.GetErrWriter())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation failure", NewExitError(ExitFailure, "duplicate address"), ExitFailure},
		{"command error", WrapExitError(ExitCommandError, "open db", errors.New("disk full")), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("index: %w", NewExitError(ExitCommandError, "x")), ExitCommandError},
		{"plain error", errors.New("boom"), ExitFailure},
		{"nil", nil, ExitSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to write snapshot", cause)
	assert.Equal(t, "failed to write snapshot: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "E105: duplicate", NewExitError(ExitFailure, "E105: duplicate").Error())
}

func TestOutputFormatter_Failure(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	all := []CLIError{
		{Code: "E102", Message: `unknown target kind "java_library"`},
		{Code: "E105", Message: "duplicate target address :svc"},
	}
	require.NoError(t, formatter.Failure(all[0], all))
	assert.Contains(t, buf.String(), "\n  \"status\": \"error\"", "failure envelopes are indented")

	var resp struct {
		Status string     `json:"status"`
		Data   []CLIError `json:"data"`
		Error  CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, all, resp.Data)
	assert.Equal(t, all[0], resp.Error)
}

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/logging"
)

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"INFO","msg":"index_batch_complete","indexed":3}
{"time":"2026-01-02T10:00:01.000Z","level":"ERROR","msg":"index_document_failed","document_id":7}
{"time":"2026-01-02T10:00:02.000Z","level":"DEBUG","msg":"stopwords_loaded","locale":"en_US"}
`

func TestLogs_NoLogFile(t *testing.T) {
	testEnv(t)

	res := run(t, "logs")

	require.Error(t, res.err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(res.err))
	assert.Contains(t, res.err.Error(), "no log file found")
}

func TestLogs_TailDefaultPath(t *testing.T) {
	// Given: a log file in the default location
	home := testEnv(t)
	writeFile(t, logging.DefaultLogPath(home), sampleLog)

	// When: showing the last two lines
	res := run(t, "logs", "-n", "2")

	// Then: only those lines are printed, uncolored since stdout is no terminal
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ERROR index_document_failed document_id=7")
	assert.Contains(t, lines[1], "DEBUG stopwords_loaded locale=en_US")
	assert.NotContains(t, res.stdout, "\033[")
	assert.Contains(t, res.stderr, "Log file: "+logging.DefaultLogPath(home))
}

func TestLogs_Filters(t *testing.T) {
	home := testEnv(t)
	path := filepath.Join(home, "custom.log")
	writeFile(t, path, sampleLog)

	tests := []struct {
		name   string
		args   []string
		expect []string
	}{
		{name: "level", args: []string{"--level", "info"}, expect: []string{"index_batch_complete", "index_document_failed"}},
		{name: "pattern", args: []string{"--filter", "stopwords_"}, expect: []string{"stopwords_loaded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, append([]string{"logs", "--file", path}, tt.args...)...)

			require.NoError(t, res.err)
			lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
			require.Len(t, lines, len(tt.expect))
			for i, msg := range tt.expect {
				assert.Contains(t, lines[i], msg)
			}
		})
	}
}

func TestLogs_LogFileFromConfig(t *testing.T) {
	home := testEnv(t)
	path := filepath.Join(home, "configured.log")
	writeFile(t, path, sampleLog)
	writeFile(t, filepath.Join(home, "relterms.yaml"), "logging:\n  file: "+path+"\n")

	res := run(t, "logs", "-n", "1")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "stopwords_loaded")
}

func TestLogs_InvalidPattern(t *testing.T) {
	home := testEnv(t)
	writeFile(t, logging.DefaultLogPath(home), sampleLog)

	res := run(t, "logs", "--filter", "(")

	require.Error(t, res.err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(res.err))
}

package cli

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeWith(t *testing.T, input string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = w.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return r
}

func TestPromptCompanyFromPipe(t *testing.T) {
	cases := map[string]string{
		"newline terminated":  "Apple Inc\n",
		"padded":              "  Apple Inc  \r\nTesla\n",
		"no trailing newline": "Apple Inc",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			company, err := promptCompany(pipeWith(t, input))
			require.NoError(t, err)
			assert.Equal(t, "Apple Inc", company)
		})
	}
}

func TestPromptCompanyFromPipeRejectsEmpty(t *testing.T) {
	_, err := promptCompany(pipeWith(t, "   \n"))
	assert.ErrorIs(t, err, errEmptyCompany)

	_, err = promptCompany(pipeWith(t, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadCompanyReadsOneLine(t *testing.T) {
	company, err := readCompany(strings.NewReader("Microsoft\nApple\n"))
	require.NoError(t, err)
	assert.Equal(t, "Microsoft", company)
}

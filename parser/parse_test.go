package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	customerrors "workforce-planner/errors"
	"workforce-planner/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatrix(t *testing.T) {
	tests := map[string]struct {
		input         string
		expectedData  [][]float64
		expectedError error
		expectedLine  int
	}{
		"ValidInput_SingleRow": {
			input: `
1900, 1700, 1600, 1900, 1500, 1800
`,
			expectedData: [][]float64{{1900, 1700, 1600, 1900, 1500, 1800}},
		},
		"ValidInput_WithComments": {
			input: `
# cumulative resignations
# m0, m1, m2, m3
0, 0, 0, 3
# second department
0, 0, 1.5, 5
`,
			expectedData: [][]float64{{0, 0, 0, 3}, {0, 0, 1.5, 5}},
		},
		"EmptyInput": {
			input:        "",
			expectedData: nil,
		},
		"InvalidFieldCount": {
			input: `
1, 2, 3
4, 5
`,
			expectedError: customerrors.ErrInvalidFieldCount,
			expectedLine:  2,
		},
		"InvalidNumber": {
			input: `
1, two, 3
`,
			expectedError: customerrors.ErrInvalidNumber,
			expectedLine:  1,
		},
		"NaNRejected": {
			input: `
1, NaN, 3
`,
			expectedError: customerrors.ErrInvalidNumber,
			expectedLine:  1,
		},
		"EmptyField": {
			input: `
# header
1, , 3
`,
			expectedError: customerrors.ErrEmptyRecord,
			expectedLine:  2,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := parser.ParseMatrix(strings.NewReader(strings.TrimPrefix(tc.input, "\n")))

			if tc.expectedError != nil {
				assert.Nil(t, data)
				assert.True(t, errors.Is(err, tc.expectedError), "got %v", err)
				var perr *customerrors.ParseError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, tc.expectedLine, perr.Line)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedData, data)
		})
	}
}

func TestParseMatrixFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.csv")
	require.NoError(t, os.WriteFile(path, []byte("100, 200\n300, 400\n"), 0o644))

	data, err := parser.ParseMatrixFile(path)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{100, 200}, {300, 400}}, data)

	_, err = parser.ParseMatrixFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

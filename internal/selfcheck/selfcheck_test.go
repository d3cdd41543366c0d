package selfcheck

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_AllPass(t *testing.T) {
	results := Run()
	assert.Len(t, results, len(checks))
	for _, r := range results {
		assert.NoError(t, r.Err, r.Name)
	}
}

func TestReport(t *testing.T) {
	t.Run("all passed", func(t *testing.T) {
		var buf bytes.Buffer
		ok := Report(&buf, []Result{{Name: "a"}, {Name: "b"}})
		assert.True(t, ok)
		assert.Equal(t, "PASS a\nPASS b\nAll 2 checks passed.\n", buf.String())
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		ok := Report(&buf, []Result{{Name: "a"}, {Name: "b", Err: errors.New("boom")}})
		assert.False(t, ok)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, []string{"PASS a", "FAIL b: boom", "1 of 2 checks failed."}, lines)
	})
}

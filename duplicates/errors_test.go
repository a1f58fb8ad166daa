package duplicates

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/base/errors"
)

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(WithKind(errors.IO, fmt.Errorf("boom"))))
	assert.Equal(t, 1, ExitCode(WithKind(errors.Internal, fmt.Errorf("boom"))))
	assert.Equal(t, 2, ExitCode(WithKind(errors.Invalid, fmt.Errorf("bad flag"))))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("untagged error defaults to non-usage")))
}

func TestWithKindNilIsNil(t *testing.T) {
	assert.NoError(t, WithKind(errors.IO, nil))
}

func TestWithKindWrapsInvalid(t *testing.T) {
	base := fmt.Errorf("bad flag")
	wrapped := WithKind(errors.Invalid, base)
	assert.True(t, errors.Is(errors.Invalid, wrapped))
}

package multierr

import (
	e "errors"
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// MultiErr collects errors from independent steps, for example when closing
// several components during shutdown.
type MultiErr struct {
	errors []error
}

func New() *MultiErr {
	return &MultiErr{}
}

// Add ignores nil errors.
func (m *MultiErr) Add(err error) {
	if err == nil {
		return
	}

	m.errors = append(m.errors, err)
}

// Err returns nil when nothing was added, the only error when one was added,
// or a combined error listing every stack otherwise.
func (m *MultiErr) Err() error {
	switch len(m.errors) {
	case 0:
		return nil
	case 1:
		return m.errors[0]
	}

	var sb strings.Builder

	for i, err := range m.errors {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(fmt.Sprintf("%d. %s", i+1, errors.ErrorStack(err)))
	}

	return errors.Errorf("There were multiple errors:\n%s", sb.String())
}

// Is reports whether the cause of a juju annotated err matches target.
func Is(err, target error) bool {
	return e.Is(err, target) || e.Is(errors.Cause(err), target)
}

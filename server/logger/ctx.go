package logger

// Ctx holds key/value pairs attached to a log entry.
type Ctx map[string]interface{}

// WithCtx merges newCtx into a copy of c. Keys from newCtx win.
func (c Ctx) WithCtx(newCtx Ctx) Ctx {
	switch {
	case c == nil:
		return newCtx
	case newCtx == nil:
		return c
	}

	merged := make(Ctx, len(c)+len(newCtx))

	for k, v := range c {
		merged[k] = v
	}

	for k, v := range newCtx {
		merged[k] = v
	}

	return merged
}

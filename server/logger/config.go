package logger

import "strings"

// Config resolves the level for a namespace.
type Config interface {
	LevelForNamespace(namespace string) Level
}

// ConfigMap maps namespace patterns to levels. Patterns are colon separated
// and may contain "*" (exactly one section) and "**" (any number of
// sections). The empty pattern configures the root.
type ConfigMap map[string]Level

// NewConfig builds a wildcard matching Config from configMap. It returns nil
// for a nil map.
func NewConfig(configMap ConfigMap) Config {
	if configMap == nil {
		return nil
	}

	root := &wildcardNode{}

	for pattern, level := range configMap {
		root.add(pattern, level)
	}

	return root
}

// NewConfigFromString parses a comma separated list of "pattern:level"
// entries. An entry without a recognised level suffix is enabled at info.
// An empty string yields a nil Config.
func NewConfigFromString(str string) Config {
	if str == "" {
		return nil
	}

	entries := strings.Split(str, ",")
	configMap := make(ConfigMap, len(entries))

	for _, pattern := range entries {
		level := LevelInfo

		if i := strings.LastIndex(pattern, ":"); i > -1 {
			if l, ok := LevelFromString(pattern[i+1:]); ok {
				level = l
				pattern = pattern[:i]
			}
		} else if l, ok := LevelFromString(pattern); ok {
			level = l
			pattern = ""
		}

		if strings.HasPrefix(pattern, "-") {
			pattern = pattern[1:]
			level = LevelDisabled
		}

		configMap[pattern] = level
	}

	return NewConfig(configMap)
}

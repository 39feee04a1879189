package hierarchy

// ResolveInitialSettings computes the settings bag of a new child.
//
// With inherit set, parent keys are copied and overrides replace them key by
// key. Nested values are not merged. Without inherit only the overrides are
// kept. The result never shares a top-level map with either argument.
func ResolveInitialSettings(parent, overrides map[string]interface{}, inherit bool) map[string]interface{} {
	size := len(overrides)
	if inherit {
		size += len(parent)
	}

	out := make(map[string]interface{}, size)
	if inherit {
		for k, v := range parent {
			out[k] = v
		}
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

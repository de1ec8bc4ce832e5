package report

// Merge combines option layers into a new map. Later layers take precedence
// over earlier ones. When two layers both hold a map under the same key the
// maps are merged key by key with the same rule, so a call-site
// "table_format" only replaces the entries it names. A higher layer holding
// false, 0 or "" still overrides. The inputs are never modified.
func Merge(layers ...Values) Values {
	out := Values{}
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		k = normalizeKey(k)
		if sm, ok := asMap(v); ok {
			if dm, ok := asMap(dst[k]); ok {
				merged := deepCopyMap(dm)
				mergeInto(merged, sm)
				dst[k] = merged
				continue
			}
			dst[k] = deepCopyMap(sm)
			continue
		}
		dst[k] = deepCopyValue(v)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Bundle:
		return m, true
	default:
		return nil, false
	}
}

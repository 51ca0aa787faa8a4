package access

// resolveReference resolves one declared delegation reference against the
// loaded row, yielding the target (type, id) pair. A missing or empty foreign
// key means the reference contributes no candidate; data-level gaps are never
// errors.
func resolveReference(rec *Record, ref Reference) (string, string, bool) {
	id, ok := rec.StringField(ref.IDColumn)
	if !ok {
		return "", "", false
	}

	if ref.TypeColumn != "" {
		table, ok := rec.StringField(ref.TypeColumn)
		if !ok {
			return "", "", false
		}
		return table, id, true
	}

	return ref.Table, id, true
}

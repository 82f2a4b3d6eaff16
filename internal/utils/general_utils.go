package utils

// TruncateId shortens an opaque id for display, e.g. a conversation header
// that could not resolve a participant name.
func TruncateId(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

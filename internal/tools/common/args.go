package common

// GetMeetingFromArgs extracts the meeting UUID from request arguments.
// Returns "" when the tool was called without one.
func GetMeetingFromArgs(args map[string]interface{}) string {
	if v, ok := args["meeting_uuid"].(string); ok {
		return v
	}
	return ""
}

// GetHostFromArgs extracts the host email from request arguments.
func GetHostFromArgs(args map[string]interface{}) string {
	if v, ok := args["host_email"].(string); ok {
		return v
	}
	return ""
}

// GetStringArg extracts a named string argument, with ok reporting whether
// it was present and non-empty.
func GetStringArg(args map[string]interface{}, name string) (string, bool) {
	v, ok := args[name].(string)
	return v, ok && v != ""
}

// Package logging configures slog for the recap commands and provides
// the shared attribute vocabulary used across the codebase.
//
// Setup installs the default handler from the logging section of the
// configuration (level and json/text format). The attribute constructors
// (Meeting, Course, Job, Tool, Status, Err, ...) keep field names
// identical everywhere a meeting or job is logged, so log streams stay
// queryable:
//
//	logger := logging.WithMeeting(slog.Default(), meetingUUID)
//	logger.Info("transcript archived", logging.Status("success"))
//
// Host emails are PII. UserHash logs a stable hash instead of the
// address, Domain logs only the part after the @, and SanitizeToken
// replaces credential material with a length indicator:
//
//	logger.Info("recording processed", logging.UserHash(hostEmail))
package logging

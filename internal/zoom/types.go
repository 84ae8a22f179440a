package zoom

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recording is the recording set of one meeting.
type Recording struct {
	UUID           string          `json:"uuid"`
	ID             int64           `json:"id"`
	AccountID      string          `json:"account_id"`
	HostID         string          `json:"host_id"`
	HostEmail      string          `json:"host_email"`
	Topic          string          `json:"topic"`
	StartTime      time.Time       `json:"start_time"`
	Duration       int             `json:"duration"`
	ShareURL       string          `json:"share_url"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// RecordingFile is one artifact of a recording: video, audio, transcript,
// chat log, and so on.
type RecordingFile struct {
	ID            string `json:"id"`
	FileType      string `json:"file_type"`
	FileExtension string `json:"file_extension"`
	FileSize      int64  `json:"file_size"`
	RecordingType string `json:"recording_type"`
	DownloadURL   string `json:"download_url"`
}

// FindTranscript returns the recording's transcript file, or nil when the
// meeting has none (transcription may be disabled or still running).
func (r *Recording) FindTranscript() *RecordingFile {
	for i := range r.RecordingFiles {
		if r.RecordingFiles[i].FileType == "TRANSCRIPT" {
			return &r.RecordingFiles[i]
		}
	}
	return nil
}

// listRecordingsResponse is one page of a user's recordings.
type listRecordingsResponse struct {
	NextPageToken string      `json:"next_page_token"`
	Meetings      []Recording `json:"meetings"`
}

// TopicInfo is the course/session structure encoded in a meeting topic.
type TopicInfo struct {
	Course        string
	SessionNumber int
	SessionName   string
}

// FolderName renders the session's Drive folder name. Numbered sessions
// carry a Session_N prefix so they sort in course order.
func (t TopicInfo) FolderName(date time.Time) string {
	if t.SessionNumber > 0 {
		return fmt.Sprintf("Session_%d_%s_%s", t.SessionNumber, t.SessionName, date.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s_%s", t.SessionName, date.Format("2006-01-02"))
}

// ParseTopic extracts course and session information from a meeting topic
// of the form "Course Name - Session N: Session Name". Topics that do not
// follow the convention degrade to an unknown course with the full topic
// as the session name; parsing never fails.
func ParseTopic(topic string) TopicInfo {
	info := TopicInfo{
		Course:      "Unknown Course",
		SessionName: topic,
	}

	course, rest, ok := strings.Cut(topic, " - ")
	if !ok {
		return info
	}
	info.Course = strings.TrimSpace(course)

	sessionPart := strings.TrimSpace(rest)
	numberPart, name, ok := strings.Cut(sessionPart, ":")
	if !ok || !strings.Contains(numberPart, "Session") {
		info.SessionName = sessionPart
		return info
	}

	n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(numberPart, "Session", "")))
	if err != nil {
		info.SessionName = sessionPart
		return info
	}

	info.SessionNumber = n
	info.SessionName = strings.TrimSpace(name)
	return info
}

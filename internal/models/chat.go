package models

// ChatSession is the message thread between the reporter and triage
// staff for one report. Session ID equals the report ID — there is at
// most one session per report.
type ChatSession struct {
	ID       string        `json:"id"`
	ReportID string        `json:"reportId"`
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is one appended message inside a session.
type ChatMessage struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	SenderID  string `json:"senderId"` // anonymous display id or "Admin"
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

package meeting

import (
	"strings"
	"time"
)

// TranscriptSegment is a finalized transcription.
type TranscriptSegment struct {
	Text       string
	ReceivedAt time.Time
}

func NewSegment(text string) TranscriptSegment {
	return TranscriptSegment{Text: text, ReceivedAt: time.Now()}
}

// WordCount counts whitespace-separated words.
func (s TranscriptSegment) WordCount() int {
	return len(strings.Fields(s.Text))
}

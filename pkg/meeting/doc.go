// Package meeting holds the live-meeting domain: transcript segments,
// agenda snapshots, the events analysts send to the client, and the
// analysts themselves.
//
// An Analyst pairs an instruction profile and a tool set with a private
// conversation history and a FIFO queue. The relay enqueues transcript
// segments and agenda attachments; the analyst's own goroutine drains the
// queue one item at a time, calling the model with the full history and
// replacing the history with the run's result. Tools are the only way an
// analyst talks to the client.
//
// A Panel runs a set of analysts for one connection and fans every input
// out to all of them.
package meeting

package telegram

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/domain/model"
)

type captureSender struct {
	texts   []string
	actions int
}

func (c *captureSender) Send(m tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch v := m.(type) {
	case tgbotapi.MessageConfig:
		c.texts = append(c.texts, v.Text)
	case tgbotapi.ChatActionConfig:
		c.actions++
	}
	return tgbotapi.Message{}, nil
}

type recordingReviewer struct {
	inputs []string
	modes  []model.ResolveMode
}

func (r *recordingReviewer) HandleReview(ctx context.Context, input string, mode model.ResolveMode) model.ReviewView {
	r.inputs = append(r.inputs, input)
	r.modes = append(r.modes, mode)
	return model.ReviewView{Status: model.ViewOK, Corrected: "X", Alerts: []string{"A"}, Suggestions: "S"}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want command
	}{
		{"/job 42", command{name: "review", mode: model.ModeJob, identifier: "42"}},
		{"/invoice  INV-9 ", command{name: "review", mode: model.ModeInvoice, identifier: "INV-9"}},
		{"/Invoice@qa_bot 77", command{name: "review", mode: model.ModeInvoice, identifier: "77"}},
		{"123", command{name: "review", mode: model.ModeInvoice, identifier: "123"}},
		{"/job", command{name: "review", mode: model.ModeJob, identifier: ""}},
		{"/help", command{name: "help"}},
		{"/refund 1", command{name: "unknown"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseCommand(tc.in, model.ModeInvoice), tc.in)
	}
}

func TestHandleUpdate_ReviewsAndReplies(t *testing.T) {
	out, rv := &captureSender{}, &recordingReviewer{}
	b := newReviewBot(out, rv, model.ModeJob, nil, nil)

	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(5, "/invoice INV-1")))
	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(5, "J7")))

	assert.Equal(t, []string{"INV-1", "J7"}, rv.inputs)
	assert.Equal(t, []model.ResolveMode{model.ModeInvoice, model.ModeJob}, rv.modes)
	require.Len(t, out.texts, 2)
	assert.Contains(t, out.texts[0], "Corrected Invoice Text\nX")
	assert.Equal(t, 2, out.actions)
}

func TestHandleUpdate_AllowlistRejects(t *testing.T) {
	out, rv := &captureSender{}, &recordingReviewer{}
	b := newReviewBot(out, rv, model.ModeJob, []int64{1111}, nil)

	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(2222, "/job 1")))
	assert.Empty(t, rv.inputs)
	require.Len(t, out.texts, 1)
	assert.Contains(t, out.texts[0], "not allowed")

	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(1111, "/job 1")))
	assert.Equal(t, []string{"1"}, rv.inputs)
}

func TestHandleUpdate_HelpAndUnknownSkipReview(t *testing.T) {
	out, rv := &captureSender{}, &recordingReviewer{}
	b := newReviewBot(out, rv, model.ModeInvoice, nil, nil)

	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(1, "/help")))
	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(1, "/nope")))
	require.NoError(t, b.handleUpdate(context.Background(), tgbotapi.Update{}))

	assert.Empty(t, rv.inputs)
	require.Len(t, out.texts, 2)
	assert.Contains(t, out.texts[0], "A bare ID uses the invoice mode.")
	assert.Contains(t, out.texts[1], "Unknown command")
}

type fixedReviewer struct{ view model.ReviewView }

func (f fixedReviewer) HandleReview(ctx context.Context, input string, mode model.ResolveMode) model.ReviewView {
	return f.view
}

func TestSplitMessage(t *testing.T) {
	long := strings.Repeat("é", 5000)
	parts := splitMessage(long, maxMessageLen)
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), maxMessageLen)
		assert.True(t, utf8.ValidString(p))
	}
	assert.Equal(t, long, strings.Join(parts, ""))

	lines := strings.Repeat(strings.Repeat("x", 99)+"\n", 50)
	parts = splitMessage(lines, maxMessageLen)
	require.Len(t, parts, 2)
	assert.True(t, strings.HasSuffix(parts[0], "\n"))
	assert.Equal(t, lines, strings.Join(parts, ""))

	assert.Equal(t, []string{"short"}, splitMessage("short", maxMessageLen))
}

func TestHandleUpdate_LongRawReplyIsNotLost(t *testing.T) {
	raw := strings.Repeat("model said something unparseable. ", 400)
	out := &captureSender{}
	b := newReviewBot(out, fixedReviewer{view: model.ReviewView{
		Status: model.ViewDecodeError,
		Raw:    raw,
		Error:  "Error parsing AI response (reply is not valid JSON). Here's the raw output:",
	}}, model.ModeJob, nil, nil)

	require.NoError(t, b.handleUpdate(context.Background(), textUpdate(3, "/job 1")))
	require.Greater(t, len(out.texts), 1)
	for _, txt := range out.texts {
		assert.LessOrEqual(t, len(txt), maxMessageLen)
	}
	assert.Contains(t, strings.Join(out.texts, ""), raw)
}

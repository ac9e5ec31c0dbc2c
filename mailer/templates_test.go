package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_EachLineBecomesParagraph(t *testing.T) {
	msg, err := Review("alice", "Hello there\n\nPlease take another look.")
	require.NoError(t, err)

	assert.Equal(t, SubjectReview, msg.Subject)
	assert.Contains(t, msg.HTML, "Dear alice,")
	assert.Contains(t, msg.HTML, ">Hello there</p>")
	assert.Contains(t, msg.HTML, ">Please take another look.</p>")
}

func TestActionRequired_IncludesEditLink(t *testing.T) {
	msg, err := ActionRequired("bob", "bad day", "Please reconsider.", "http://localhost:8080/posts/3/edit")
	require.NoError(t, err)

	assert.Equal(t, SubjectActionRequired, msg.Subject)
	assert.Contains(t, msg.HTML, `href="http://localhost:8080/posts/3/edit"`)
	assert.Contains(t, msg.HTML, "Please reconsider.")
}

func TestRender_EscapesContent(t *testing.T) {
	msg, err := AutoReview("eve", "<script>alert(1)</script>", "ok")
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Paragraphs(" a \n\n b\n"))
	assert.Empty(t, Paragraphs("\n \n"))
}

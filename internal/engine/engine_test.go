package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertexaitech/supportbot/internal/engine"
	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/vertexaitech/supportbot/test/testutil"
)

const testPhone = "+923001112233"

type fixture struct {
	engine    *engine.Engine
	store     *testutil.MemoryStore
	sender    *testutil.MockSender
	completer *testutil.MockCompleter
	team      *testutil.MockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     testutil.NewMemoryStore(),
		sender:    testutil.NewMockSender(),
		completer: testutil.NewMockCompleter("Tell me more about your project."),
		team:      testutil.NewMockNotifier(),
	}
	f.engine = engine.New(engine.Opts{
		Store:     f.store,
		Completer: f.completer,
		Sender:    f.sender,
		Team:      f.team,
		Log:       testutil.NopLogger(),
	})
	return f
}

// seed puts a conversation past the name collection phase with the
// given number of inbound messages already used.
func (f *fixture) seed(t *testing.T, used int) {
	t.Helper()
	conv := &models.Conversation{
		PhoneNumber:  testPhone,
		ClientName:   "Ahmed",
		NameState:    models.NameProvided,
		Status:       models.StatusPending,
		MessagesUsed: used,
		Turns:        models.TurnList{},
	}
	require.NoError(t, f.store.Save(testutil.TestContext(t), conv))
	f.store.SaveCalls = 0
}

func (f *fixture) lastReply(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sender.Sent)
	return f.sender.Sent[len(f.sender.Sent)-1].Message
}

func TestHandleFirstMessageAsksName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ok := f.engine.Handle(testutil.TestContext(t), "03001112233", "hello")
	assert.True(t, ok)
	assert.Equal(t, engine.ReplyAskName, f.lastReply(t))

	conv := f.store.Get(testPhone)
	require.NotNil(t, conv, "raw phone must be normalized before lookup")
	assert.Equal(t, models.NameAsked, conv.NameState)
	assert.Equal(t, 1, conv.MessagesUsed)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, models.RoleClient, conv.Turns[0].Role)
	assert.Equal(t, "hello", conv.Turns[0].Message)
	assert.Equal(t, models.RoleAssistant, conv.Turns[1].Role)

	// No classifier or LLM reply on the first message, even though
	// "hello" is a greeting.
	assert.Empty(t, f.completer.Calls)
	assert.Empty(t, f.team.Alerts)
}

func TestHandleSecondMessageCapturesName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := testutil.TestContext(t)

	f.engine.Handle(ctx, testPhone, "hi")
	f.engine.Handle(ctx, testPhone, "  Ahmed Khan  ")

	conv := f.store.Get(testPhone)
	assert.Equal(t, "Ahmed Khan", conv.ClientName)
	assert.Equal(t, models.NameProvided, conv.NameState)
	assert.Equal(t, "Nice to meet you, Ahmed Khan! I'm here to help you with your project requirements. What type of app or website are you looking to build?", f.lastReply(t))
}

// The name reply is taken verbatim even when it looks like an intent.
func TestHandleNameCaptureBeatsClassifier(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := testutil.TestContext(t)

	f.engine.Handle(ctx, testPhone, "hello")
	f.engine.Handle(ctx, testPhone, "how much is it?")

	conv := f.store.Get(testPhone)
	assert.Equal(t, "how much is it?", conv.ClientName)
	assert.Empty(t, f.team.Alerts)
}

func TestHandleClassifiedReply(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)

	f.engine.Handle(testutil.TestContext(t), testPhone, "I have a problem with my order")
	assert.Equal(t, "I'm here to help. Could you share more details about the issue?", f.lastReply(t))
	assert.Empty(t, f.team.Alerts, "support inquiries do not alert the team")
	assert.Empty(t, f.completer.Calls)
}

func TestHandlePricingAlertsTeam(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)

	f.engine.Handle(testutil.TestContext(t), testPhone, "what is your pricing?")
	assert.Equal(t, "Our pricing starts from $99. Would you like the full details?", f.lastReply(t))

	require.Len(t, f.team.Alerts, 1)
	alert := f.team.Alerts[0]
	assert.Contains(t, alert.Message, "💰 PRICING INQUIRY")
	assert.Contains(t, alert.Message, "what is your pricing?")
	assert.Equal(t, testPhone, alert.Phone)
	assert.Equal(t, "Ahmed", alert.ClientName)
}

// Low-confidence classifications (general at 0.7) fall through to the
// later rungs instead of using the canned response.
func TestHandleLowConfidenceFallsThrough(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)

	f.engine.Handle(testutil.TestContext(t), testPhone, "thanks, tell me about your services")
	assert.Equal(t, "Tell me more about your project.", f.lastReply(t))
	require.Len(t, f.completer.Calls, 1)
}

func TestHandleEscalation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)

	f.engine.Handle(testutil.TestContext(t), testPhone, "please have your team reach out")
	assert.Equal(t, engine.ReplyEscalation, f.lastReply(t))

	require.Len(t, f.team.Alerts, 1)
	assert.Contains(t, f.team.Alerts[0].Message, "📞 CLIENT WANTS TEAM CONTACT")

	conv := f.store.Get(testPhone)
	assert.Equal(t, models.StatusPending, conv.Status, "escalation does not finalize")
}

func TestHandleCompletionFinalizes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)

	f.engine.Handle(testutil.TestContext(t), testPhone, "sounds good, let's proceed")
	assert.Equal(t, engine.ReplyFinalized, f.lastReply(t))

	conv := f.store.Get(testPhone)
	assert.Equal(t, models.StatusFinalized, conv.Status)

	require.Len(t, f.team.Alerts, 1)
	alert := f.team.Alerts[0]
	assert.Contains(t, alert.Message, "✅ PROJECT FINALIZED")
	assert.Contains(t, alert.Message, "Conversation:", "finalization alert carries the transcript")
}

// "sounds good" classifies as other/0.5 and matches a completion
// phrase, so the ladder must finalize rather than ask the LLM.
func TestHandleCompletionBeatsFallback(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)

	f.engine.Handle(testutil.TestContext(t), testPhone, "sounds good")
	assert.Equal(t, engine.ReplyFinalized, f.lastReply(t))
	assert.Empty(t, f.completer.Calls)
}

func TestHandleMessageLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 19)

	// The 20th inbound message hits the limit.
	f.engine.Handle(testutil.TestContext(t), testPhone, "tell me more about tiktok clones")
	assert.Equal(t, engine.ReplyLimit, f.lastReply(t))

	require.Len(t, f.team.Alerts, 1)
	assert.Contains(t, f.team.Alerts[0].Message, "⚠️ MESSAGE LIMIT REACHED")
	assert.Contains(t, f.team.Alerts[0].Message, "Messages used: 20")
	assert.Empty(t, f.completer.Calls)
}

func TestHandleBelowLimitUsesFallback(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 18)

	f.engine.Handle(testutil.TestContext(t), testPhone, "tell me more about tiktok clones")
	assert.Equal(t, "Tell me more about your project.", f.lastReply(t))
	require.Len(t, f.completer.Calls, 1)
}

// Completion and escalation phrases win over the limit even on the
// limit message.
func TestHandleCompletionBeatsLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 19)

	f.engine.Handle(testutil.TestContext(t), testPhone, "go ahead")
	assert.Equal(t, engine.ReplyFinalized, f.lastReply(t))
}

func TestHandleFallbackHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := testutil.TestContext(t)

	f.engine.Handle(ctx, testPhone, "hi")
	f.engine.Handle(ctx, testPhone, "Ahmed")
	f.engine.Handle(ctx, testPhone, "I want a marketplace for used cars")

	require.Len(t, f.completer.Calls, 1)
	call := f.completer.Calls[0]
	assert.Equal(t, "I want a marketplace for used cars", call.Message)

	// History holds everything said before the current message, with
	// client turns mapped to the user role.
	require.Len(t, call.History, 4)
	assert.Equal(t, "user", call.History[0].Role)
	assert.Equal(t, "hi", call.History[0].Content)
	assert.Equal(t, "assistant", call.History[1].Role)
	assert.Equal(t, engine.ReplyAskName, call.History[1].Content)
	assert.Equal(t, "user", call.History[2].Role)
	assert.Equal(t, "Ahmed", call.History[2].Content)
	assert.Equal(t, "assistant", call.History[3].Role)
}

// A finalized conversation keeps flowing through the ladder; clients
// can still ask questions after confirming.
func TestHandleFinalizedKeepsResponding(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 3)
	ctx := testutil.TestContext(t)

	f.engine.Handle(ctx, testPhone, "that's all")
	require.Equal(t, models.StatusFinalized, f.store.Get(testPhone).Status)

	f.engine.Handle(ctx, testPhone, "what is your pricing?")
	assert.Equal(t, "Our pricing starts from $99. Would you like the full details?", f.lastReply(t))
}

func TestHandleSendFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)
	f.sender.Result = false

	ok := f.engine.Handle(testutil.TestContext(t), testPhone, "hello")
	assert.False(t, ok)

	// State was still persisted before the send.
	conv := f.store.Get(testPhone)
	assert.Equal(t, 3, conv.MessagesUsed)
}

// A storage failure is logged and swallowed; the reply still goes out.
func TestHandleSaveFailureStillReplies(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)
	f.store.SaveErr = errors.New("connection reset")

	ok := f.engine.Handle(testutil.TestContext(t), testPhone, "hello")
	assert.True(t, ok)
	assert.Len(t, f.sender.Sent, 1)
}

// Alert delivery failure never affects the client reply.
func TestHandleAlertFailureIgnored(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 2)
	f.team.Result = false

	ok := f.engine.Handle(testutil.TestContext(t), testPhone, "how much?")
	assert.True(t, ok)
	assert.Equal(t, "Our pricing starts from $99. Would you like the full details?", f.lastReply(t))
}

func TestHandleStoreErrorReturnsFalse(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.GetOrCreateErr = errors.New("db down")

	ok := f.engine.Handle(testutil.TestContext(t), testPhone, "hello")
	assert.False(t, ok)
	assert.Empty(t, f.sender.Sent)
}

func TestHandleCustomMessageLimit(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	sender := testutil.NewMockSender()
	team := testutil.NewMockNotifier()
	e := engine.New(engine.Opts{
		Store:        store,
		Completer:    testutil.NewMockCompleter("ok"),
		Sender:       sender,
		Team:         team,
		Log:          testutil.NopLogger(),
		MessageLimit: 3,
	})
	ctx := testutil.TestContext(t)

	e.Handle(ctx, testPhone, "hi")
	e.Handle(ctx, testPhone, "Ahmed")
	e.Handle(ctx, testPhone, "zzz unmatched zzz")

	assert.Equal(t, engine.ReplyLimit, sender.Sent[len(sender.Sent)-1].Message)
}

package mockbackend

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/api"
)

type staticToken string

func (t staticToken) Token() (string, error) { return string(t), nil }

type fixture struct {
	srv    *Server
	client *api.Client
	sets   []api.StudySet
}

// newFixture starts a mock backend, logs in as the demo user and returns
// an authenticated client.
func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	srv := New(opts)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	anon, err := api.New(api.Options{BaseURL: hs.URL})
	require.NoError(t, err)
	tok, err := anon.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	client, err := api.New(api.Options{BaseURL: hs.URL, Credentials: staticToken(tok.AccessToken)})
	require.NoError(t, err)
	sets, err := client.StudySets(context.Background())
	require.NoError(t, err)
	return &fixture{srv: srv, client: client, sets: sets}
}

func (f *fixture) set(t *testing.T, title string) api.StudySet {
	t.Helper()
	for _, s := range f.sets {
		if s.Title == title {
			return s
		}
	}
	t.Fatalf("no study set %q", title)
	return api.StudySet{}
}

func TestLogin(t *testing.T) {
	hs := httptest.NewServer(New(Options{}).Handler())
	defer hs.Close()
	client, err := api.New(api.Options{BaseURL: hs.URL})
	require.NoError(t, err)

	_, err = client.Login(context.Background(), DemoEmail, "wrong-password")
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindUnauthenticated))
	assert.Equal(t, "Incorrect email or password", api.Message(err))
}

func TestRegisterThenLogin(t *testing.T) {
	hs := httptest.NewServer(New(Options{}).Handler())
	defer hs.Close()
	client, err := api.New(api.Options{BaseURL: hs.URL})
	require.NoError(t, err)
	ctx := context.Background()

	u, err := client.Register(ctx, "new@test.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "new@test.com", u.Email)

	_, err = client.Register(ctx, "new@test.com", "hunter22")
	assert.True(t, api.IsKind(err, api.KindServerRejected))
	assert.Equal(t, "Email already registered", api.Message(err))

	_, err = client.Login(ctx, "new@test.com", "hunter22")
	require.NoError(t, err)
}

func TestStudySetsAreScopedToCaller(t *testing.T) {
	f := newFixture(t, Options{})
	require.Len(t, f.sets, 3)
	assert.Equal(t, "Biology Chapter 4", f.sets[0].Title)
	assert.Equal(t, 3, f.sets[0].CardCount)
	assert.Nil(t, f.sets[0].MasteryScore)

	me, err := f.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, me.Email)

	empty := newFixture(t, Options{Empty: true})
	assert.Empty(t, empty.sets)
}

func TestReviewFlow(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	bio := f.set(t, "Biology Chapter 4")

	due, err := f.client.TodaysReview(ctx)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, bio.ID, due[0].SetID)
	assert.Equal(t, 3, due[0].DueCardCount)

	cards, err := f.client.Flashcards(ctx, bio.ID, api.ReviewAll)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	require.NoError(t, f.client.SubmitReview(ctx, cards[0].ID, api.GradeGood))
	require.NoError(t, f.client.SubmitReview(ctx, cards[1].ID, api.GradeAgain))

	dueCards, err := f.client.Flashcards(ctx, bio.ID, api.ReviewDue)
	require.NoError(t, err)
	require.Len(t, dueCards, 2)
	assert.Equal(t, cards[1].ID, dueCards[0].ID)

	sets, err := f.client.StudySets(ctx)
	require.NoError(t, err)
	require.NotNil(t, sets[0].MasteryScore)
	assert.Equal(t, 25.0, *sets[0].MasteryScore)

	err = f.client.SubmitReview(ctx, "99999", api.GradeEasy)
	assert.True(t, api.IsKind(err, api.KindNotFound))
}

func TestDueModeEmptyWhenAllGraded(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	econ := f.set(t, "Economics Supply & Demand")

	cards, err := f.client.Flashcards(ctx, econ.ID, api.ReviewAll)
	require.NoError(t, err)
	for _, c := range cards {
		require.NoError(t, f.client.SubmitReview(ctx, c.ID, api.GradeEasy))
	}

	due, err := f.client.Flashcards(ctx, econ.ID, api.ReviewDue)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestQuizCompleteAndRegenerate(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	bio := f.set(t, "Biology Chapter 4")

	qs, err := f.client.Quiz(ctx, bio.ID)
	require.NoError(t, err)
	require.Len(t, qs, 3)

	answers := []api.QuizAnswer{
		{QuestionID: qs[0].ID, Selected: qs[0].CorrectAnswer},
		{QuestionID: qs[1].ID, Selected: "Oxygen"},
	}
	res, err := f.client.CompleteQuiz(ctx, bio.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, api.QuizResult{Correct: 1, Answered: 2}, *res)
	assert.Equal(t, 50, res.Percent())

	require.NoError(t, f.client.RegenerateQuiz(ctx, bio.ID))
	next, err := f.client.Quiz(ctx, bio.ID)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.NotEqual(t, qs[0].ID, next[0].ID)

	// Answers to the replaced questions are rejected.
	_, err = f.client.CompleteQuiz(ctx, bio.ID, answers)
	assert.True(t, api.IsKind(err, api.KindServerRejected))
}

func TestArenaSubmitAndRegenerate(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	bio := f.set(t, "Biology Chapter 4")

	ch, err := f.client.ArenaChallenge(ctx, bio.ID)
	require.NoError(t, err)

	good, err := f.client.SubmitArena(ctx, bio.ID, ch.ID, ch.IdealResponse)
	require.NoError(t, err)
	assert.Equal(t, ch.ID, good.ChallengeID)
	assert.Equal(t, 100, good.AIScore)
	assert.NotEmpty(t, good.AIFeedback)

	poor, err := f.client.SubmitArena(ctx, bio.ID, ch.ID, "no idea")
	require.NoError(t, err)
	assert.Equal(t, 0, poor.AIScore)

	require.NoError(t, f.client.RegenerateArena(ctx, bio.ID))
	next, err := f.client.ArenaChallenge(ctx, bio.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ch.ID, next.ID)
	assert.NotEqual(t, ch.Scenario, next.Scenario)

	_, err = f.client.SubmitArena(ctx, bio.ID, ch.ID, ch.IdealResponse)
	assert.True(t, api.IsKind(err, api.KindNotFound))
}

func TestGenerateAndDelete(t *testing.T) {
	f := newFixture(t, Options{Empty: true})
	ctx := context.Background()

	_, err := f.client.Generate(ctx, "notes.txt", strings.NewReader("plain text"))
	require.Error(t, err)
	assert.Equal(t, "Invalid file type. Please upload a PDF.", api.Message(err))

	set, err := f.client.Generate(ctx, "Cell Biology.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", set.Title)
	assert.Equal(t, 3, set.CardCount)

	require.NoError(t, f.client.LogStudyTime(ctx, set.ID, 90*time.Second))

	require.NoError(t, f.client.DeleteStudySet(ctx, set.ID))
	err = f.client.DeleteStudySet(ctx, set.ID)
	assert.True(t, api.IsKind(err, api.KindNotFound))

	_, err = f.client.Flashcards(ctx, set.ID, api.ReviewAll)
	assert.True(t, api.IsKind(err, api.KindNotFound))
}

func TestExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := newFixture(t, Options{Now: clock, TokenTTL: time.Minute})

	now = now.Add(2 * time.Minute)
	_, err := f.client.StudySets(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindUnauthenticated))
}

func TestMissingBearerRejected(t *testing.T) {
	hs := httptest.NewServer(New(Options{}).Handler())
	defer hs.Close()
	client, err := api.New(api.Options{BaseURL: hs.URL, Credentials: staticToken("not-a-jwt")})
	require.NoError(t, err)

	_, err = client.StudySets(context.Background())
	assert.True(t, api.IsKind(err, api.KindUnauthenticated))
}

func TestOverlapScore(t *testing.T) {
	assert.Equal(t, 0, overlapScore("anything", ""))
	assert.Equal(t, 100, overlapScore("Supply shifts; PRICE rises", "supply shifts price rises"))
	assert.Equal(t, 50, overlapScore("supply only", "supply demand"))
}

package ball

import (
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/spiffcs/eipboard/internal/model"
	"github.com/spiffcs/eipboard/internal/roles"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 12, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func author(d int) model.Event {
	return model.Event{Actor: model.ActorAuthor, When: day(d)}
}

func editor(d int) model.Event {
	return model.Event{Actor: model.ActorEditor, When: day(d)}
}

func TestLatestEditorReview(t *testing.T) {
	editors := roles.NewSet("eddie", "erin")

	tests := []struct {
		name    string
		reviews []model.Review
		want    model.Event
		wantOK  bool
	}{
		{
			name:   "no reviews",
			wantOK: false,
		},
		{
			name: "approval is not actionable",
			reviews: []model.Review{
				{Author: "eddie", State: model.ReviewApproved, SubmittedAt: ptr(day(3))},
			},
			wantOK: false,
		},
		{
			name: "non-editor review ignored",
			reviews: []model.Review{
				{Author: "random", State: model.ReviewChangesRequested, SubmittedAt: ptr(day(3))},
			},
			wantOK: false,
		},
		{
			name: "latest qualifying review wins",
			reviews: []model.Review{
				{Author: "Eddie", State: model.ReviewCommented, SubmittedAt: ptr(day(7))},
				{Author: "erin", State: model.ReviewChangesRequested, SubmittedAt: ptr(day(3))},
				{Author: "eddie", State: model.ReviewApproved, SubmittedAt: ptr(day(9))},
			},
			want:   editor(7),
			wantOK: true,
		},
		{
			name: "missing submission time is skipped",
			reviews: []model.Review{
				{Author: "eddie", State: model.ReviewCommented},
				{Author: "erin", State: model.ReviewCommented, SubmittedAt: ptr(day(2))},
			},
			want:   editor(2),
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LatestEditorReview(tt.reviews, editors)
			if ok != tt.wantOK {
				t.Fatalf("LatestEditorReview() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("LatestEditorReview() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyComment(t *testing.T) {
	editors := roles.NewSet("eddie", "both")
	authors := roles.NewSet("alice", "both")

	tests := []struct {
		name      string
		author    string
		wantActor model.Actor
		wantOK    bool
	}{
		{"editor", "Eddie", model.ActorEditor, true},
		{"author", "alice", model.ActorAuthor, true},
		{"editor wins over author", "both", model.ActorEditor, true},
		{"third party dropped", "bystander", 0, false},
		{"missing author dropped", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyComment(model.Comment{Author: tt.author, CreatedAt: day(4)}, editors, authors)
			if ok != tt.wantOK {
				t.Fatalf("ClassifyComment() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Actor != tt.wantActor {
				t.Errorf("ClassifyComment().Actor = %v, want %v", got.Actor, tt.wantActor)
			}
			if !got.When.Equal(day(4)) {
				t.Errorf("ClassifyComment().When = %v, want %v", got.When, day(4))
			}
		})
	}
}

func TestClassifyComments(t *testing.T) {
	editors := roles.NewSet("eddie")
	authors := roles.NewSet("alice")

	got := ClassifyComments([]model.Comment{
		{Author: "alice", CreatedAt: day(2)},
		{Author: "bystander", CreatedAt: day(3)},
		{Author: "eddie", CreatedAt: day(4)},
	}, editors, authors)

	want := []model.Event{author(2), editor(4)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClassifyComments() = %+v, want %+v", got, want)
	}
}

func TestClassifyCommit(t *testing.T) {
	tests := []struct {
		name   string
		commit model.Commit
		want   time.Time
		wantOK bool
	}{
		{"committer date preferred", model.Commit{CommitterDate: ptr(day(5)), AuthorDate: ptr(day(1))}, day(5), true},
		{"author date fallback", model.Commit{AuthorDate: ptr(day(1))}, day(1), true},
		{"no dates dropped", model.Commit{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyCommit(tt.commit)
			if ok != tt.wantOK {
				t.Fatalf("ClassifyCommit() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Actor != model.ActorAuthor {
				t.Errorf("commits must be attributed to the author, got %v", got.Actor)
			}
			if !got.When.Equal(tt.want) {
				t.Errorf("ClassifyCommit().When = %v, want %v", got.When, tt.want)
			}
		})
	}

	if n := len(ClassifyCommits([]model.Commit{{}, {AuthorDate: ptr(day(2))}})); n != 1 {
		t.Errorf("ClassifyCommits() kept %d events, want 1", n)
	}
}

func TestBuild(t *testing.T) {
	review := editor(5)
	comments := []model.Event{author(8), editor(3)}
	reviewComments := []model.Event{editor(6)}
	commits := []model.Event{author(10), author(-20)} // second predates creation

	got := Build(day(1), &review, comments, reviewComments, commits)

	want := Timeline{author(1), editor(3), editor(5), editor(6), author(8), author(10)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %+v, want %+v", got, want)
	}

	again := Build(day(1), &review, comments, reviewComments, commits)
	if !reflect.DeepEqual(got, again) {
		t.Error("Build() is not idempotent")
	}

	if !slices.IsSortedFunc(got, func(a, b model.Event) int { return a.When.Compare(b.When) }) {
		t.Error("Build() output is not sorted")
	}

	for _, e := range got {
		if e.When.Before(day(1)) {
			t.Errorf("event %+v predates creation", e)
		}
	}
}

func TestBuildStableTies(t *testing.T) {
	// the creation seed comes first, so an editor comment at creation time
	// sorts after it
	got := Build(day(1), nil, []model.Event{editor(1), author(1)}, nil, nil)
	want := Timeline{author(1), editor(1), author(1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %+v, want %+v", got, want)
	}
}

func TestBuildKeepsDuplicates(t *testing.T) {
	got := Build(day(1), nil, []model.Event{author(2), author(2)}, nil, []model.Event{author(2)})
	if len(got) != 4 {
		t.Errorf("expected 4 events (no deduplication), got %d", len(got))
	}
}

func TestDetermine(t *testing.T) {
	tests := []struct {
		name     string
		timeline Timeline
		want     State
	}{
		{
			name:     "empty timeline",
			timeline: nil,
			want:     NoActionNeeded,
		},
		{
			name:     "created with no activity",
			timeline: Timeline{author(1)},
			want:     AwaitingEditorSince(day(1)),
		},
		{
			name:     "author activity only waits since creation",
			timeline: Timeline{author(1), author(3), author(4)},
			want:     AwaitingEditorSince(day(1)),
		},
		{
			name:     "editor spoke last",
			timeline: Timeline{author(1), editor(5)},
			want:     NoActionNeeded,
		},
		{
			name:     "author replied after editor",
			timeline: Timeline{author(1), editor(5), author(10)},
			want:     AwaitingEditorSince(day(10)),
		},
		{
			name:     "earliest reply wins, not the latest",
			timeline: Timeline{author(1), editor(5), author(10), author(12), author(20)},
			want:     AwaitingEditorSince(day(10)),
		},
		{
			name:     "only the last editor event matters",
			timeline: Timeline{author(1), editor(2), author(3), editor(5), author(8)},
			want:     AwaitingEditorSince(day(8)),
		},
		{
			name:     "author event at the same instant is not after",
			timeline: Timeline{author(1), editor(5), author(5)},
			want:     NoActionNeeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Determine(tt.timeline)
			if got != tt.want {
				t.Errorf("Determine() = %v, want %v", got, tt.want)
			}
			if again := Determine(tt.timeline); again != got {
				t.Errorf("Determine() not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestScenarios(t *testing.T) {
	editors := roles.NewSet("eddie")
	authors := roles.NewSet("alice")
	created := day(1)

	t.Run("untouched request waits since creation", func(t *testing.T) {
		state := Determine(Build(created, nil, nil, nil, nil))
		if state != AwaitingEditorSince(created) {
			t.Errorf("got %v", state)
		}
	})

	t.Run("commit after editor comment returns the ball", func(t *testing.T) {
		comments := ClassifyComments([]model.Comment{{Author: "eddie", CreatedAt: day(5)}}, editors, authors)
		commits := ClassifyCommits([]model.Commit{{CommitterDate: ptr(day(10))}})
		state := Determine(Build(created, nil, comments, nil, commits))
		if state != AwaitingEditorSince(day(10)) {
			t.Errorf("got %v", state)
		}
	})

	t.Run("editor comment without reply leaves ball with author", func(t *testing.T) {
		comments := ClassifyComments([]model.Comment{{Author: "eddie", CreatedAt: day(5)}}, editors, authors)
		state := Determine(Build(created, nil, comments, nil, nil))
		if state != NoActionNeeded {
			t.Errorf("got %v", state)
		}
	})

	t.Run("rebased commit predating creation is ignored", func(t *testing.T) {
		review, _ := LatestEditorReview([]model.Review{
			{Author: "eddie", State: model.ReviewChangesRequested, SubmittedAt: ptr(day(5))},
		}, editors)
		commits := ClassifyCommits([]model.Commit{{CommitterDate: ptr(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))}})
		state := Determine(Build(created, &review, nil, nil, commits))
		if state != NoActionNeeded {
			t.Errorf("got %v", state)
		}
	})
}

func TestStateString(t *testing.T) {
	if NoActionNeeded.String() != "no action needed" {
		t.Errorf("unexpected %q", NoActionNeeded.String())
	}
	want := "awaiting editor since 2024-01-10T12:00:00Z"
	if got := AwaitingEditorSince(day(10)).String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

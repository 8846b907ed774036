package llm

import "context"

// tag labels a request in the llm log.
type tag struct {
	purpose    string
	questionID string
}

type tagKey struct{}

func tagFrom(ctx context.Context) tag {
	t, _ := ctx.Value(tagKey{}).(tag)
	return t
}

// WithPurpose labels every request made with ctx, e.g. "explain".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	t := tagFrom(ctx)
	t.purpose = purpose
	return context.WithValue(ctx, tagKey{}, t)
}

// WithQuestion records which question a request is about.
func WithQuestion(ctx context.Context, id string) context.Context {
	t := tagFrom(ctx)
	t.questionID = id
	return context.WithValue(ctx, tagKey{}, t)
}

// PurposeFrom returns the purpose label, or "untagged".
func PurposeFrom(ctx context.Context) string {
	if p := tagFrom(ctx).purpose; p != "" {
		return p
	}
	return "untagged"
}

// QuestionFrom returns the question id set by WithQuestion.
func QuestionFrom(ctx context.Context) string {
	return tagFrom(ctx).questionID
}

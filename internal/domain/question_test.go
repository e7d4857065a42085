package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierOrdering(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, TierEasy.Index())
	assert.Equal(t, 1, TierMedium.Index())
	assert.Equal(t, 2, TierHard.Index())
	assert.Equal(t, -1, Tier("impossible").Index())

	assert.Equal(t, TierEasy, TierFromIndex(-5), "below-range index clamps to easiest")
	assert.Equal(t, TierMedium, TierFromIndex(1))
	assert.Equal(t, TierHard, TierFromIndex(7), "above-range index clamps to hardest")
}

func TestTierDifficulty(t *testing.T) {
	t.Parallel()

	assert.Less(t, TierEasy.Difficulty(), TierMedium.Difficulty())
	assert.Less(t, TierMedium.Difficulty(), TierHard.Difficulty())
}

func TestNewQuestionValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		subject string
		topic   string
		tier    Tier
		text    string
		answer  string
		wantErr error
	}{
		{
			name:    "valid question",
			subject: "math",
			topic:   "fractions",
			tier:    TierEasy,
			text:    "What is 1/2 + 1/2?",
			answer:  "1",
			wantErr: nil,
		},
		{
			name:    "empty subject",
			subject: "  ",
			topic:   "fractions",
			tier:    TierEasy,
			text:    "What is 1/2 + 1/2?",
			answer:  "1",
			wantErr: ErrQuestionSubjectEmpty,
		},
		{
			name:    "empty topic",
			subject: "math",
			topic:   "",
			tier:    TierEasy,
			text:    "What is 1/2 + 1/2?",
			answer:  "1",
			wantErr: ErrQuestionTopicEmpty,
		},
		{
			name:    "invalid tier",
			subject: "math",
			topic:   "fractions",
			tier:    Tier("brutal"),
			text:    "What is 1/2 + 1/2?",
			answer:  "1",
			wantErr: ErrInvalidTier,
		},
		{
			name:    "empty text",
			subject: "math",
			topic:   "fractions",
			tier:    TierEasy,
			text:    "",
			answer:  "1",
			wantErr: ErrQuestionTextEmpty,
		},
		{
			name:    "empty answer",
			subject: "math",
			topic:   "fractions",
			tier:    TierEasy,
			text:    "What is 1/2 + 1/2?",
			answer:  "   ",
			wantErr: ErrQuestionAnswerEmpty,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			q, err := NewQuestion(tc.subject, tc.topic, tc.tier, tc.text, tc.answer, nil)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, q)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, q.ID)
			assert.False(t, q.CreatedAt.IsZero())
		})
	}
}

func TestQuestionIsCorrect(t *testing.T) {
	t.Parallel()

	q, err := NewQuestion("math", "fractions", TierEasy, "What is 1/2 + 1/2?", "One", nil)
	require.NoError(t, err)

	assert.True(t, q.IsCorrect("One"))
	assert.True(t, q.IsCorrect("one"), "comparison is case-insensitive")
	assert.True(t, q.IsCorrect("  ONE  "), "surrounding whitespace is ignored")
	assert.False(t, q.IsCorrect("two"))
	assert.False(t, q.IsCorrect(""))
}

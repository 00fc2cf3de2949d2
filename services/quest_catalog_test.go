package services

import (
	"testing"

	"calmquest-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestsForMoodServesMoodOrNeutral(t *testing.T) {
	for _, mood := range models.AllMoods {
		quests := QuestsForMood(mood, DefaultQuestCount)
		require.NotEmpty(t, quests, "mood %s has no quests", mood)
		assert.LessOrEqual(t, len(quests), DefaultQuestCount)
		for _, q := range quests {
			assert.True(t, q.ServesMood(mood) || q.ServesMood(models.MoodNeutral),
				"quest %s does not serve %s or neutral", q.ID, mood)
		}
	}
}

func TestQuestsForMoodBoundsCount(t *testing.T) {
	quests := QuestsForMood(models.MoodCalm, 100)
	assert.LessOrEqual(t, len(quests), len(models.QuestTemplates))

	quests = QuestsForMood(models.MoodCalm, 0)
	assert.Len(t, quests, DefaultQuestCount)
}

func TestQuestIDsAreStableSlugs(t *testing.T) {
	seen := map[string]bool{}
	for _, q := range models.QuestTemplates {
		require.NotEmpty(t, q.ID)
		assert.False(t, seen[q.ID], "duplicate quest id %s", q.ID)
		seen[q.ID] = true
	}

	quest, ok := QuestByID("box-breathing-challenge")
	require.True(t, ok)
	assert.Equal(t, "Box Breathing Challenge", quest.Title)
	assert.Equal(t, 5, quest.Duration)

	_, ok = QuestByID("no-such-quest")
	assert.False(t, ok)
}

func TestAllQuestsReturnsCopy(t *testing.T) {
	quests := AllQuests()
	require.Len(t, quests, len(models.QuestTemplates))
	quests[0].Title = "mutated"
	assert.NotEqual(t, "mutated", models.QuestTemplates[0].Title)
}

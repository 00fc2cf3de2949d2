package services

import (
	"math/rand"

	"calmquest-backend/models"
)

// DefaultQuestCount bounds a mood recommendation set.
const DefaultQuestCount = 3

// QuestsForMood picks up to count quests serving the given mood. Mood-specific
// templates are padded with neutral ones so a sparse mood still fills the set;
// the combined pool is shuffled so repeat visits vary.
func QuestsForMood(mood models.Mood, count int) []models.Quest {
	if count <= 0 {
		count = DefaultQuestCount
	}

	var pool []models.Quest
	for _, q := range models.QuestTemplates {
		if q.ServesMood(mood) {
			pool = append(pool, q)
		}
	}
	if mood != models.MoodNeutral {
		for _, q := range models.QuestTemplates {
			if q.ServesMood(models.MoodNeutral) && !q.ServesMood(mood) {
				pool = append(pool, q)
			}
		}
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}

// AllQuests returns the full catalog.
func AllQuests() []models.Quest {
	out := make([]models.Quest, len(models.QuestTemplates))
	copy(out, models.QuestTemplates)
	return out
}

// QuestByID looks a template up by its slug id.
func QuestByID(id string) (models.Quest, bool) {
	for _, q := range models.QuestTemplates {
		if q.ID == id {
			return q, true
		}
	}
	return models.Quest{}, false
}

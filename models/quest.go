package models

import "github.com/gosimple/slug"

type QuestType string

const (
	QuestMeditation  QuestType = "meditation"
	QuestBreathing   QuestType = "breathing"
	QuestMindfulness QuestType = "mindfulness"
	QuestMovement    QuestType = "movement"
)

type QuestDifficulty string

const (
	DifficultyEasy   QuestDifficulty = "easy"
	DifficultyMedium QuestDifficulty = "medium"
	DifficultyHard   QuestDifficulty = "hard"
)

// Quest is one activity template from the static catalog. The catalog is
// read-only content, not logic; the engine only consumes Duration when
// computing rewards.
type Quest struct {
	ID           string          `json:"id"` // slug of the title, stable
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Type         QuestType       `json:"type"`
	Duration     int             `json:"duration"` // minutes
	Difficulty   QuestDifficulty `json:"difficulty"`
	XPReward     int             `json:"xp_reward"`
	Moods        []Mood          `json:"moods"`
	Instructions []string        `json:"instructions"`
	Icon         string          `json:"icon"`
}

// QuestTemplates is the full catalog, grouped by the moods it serves.
var QuestTemplates = []Quest{
	{
		Title:       "Stress Relief Meditation",
		Description: "A calming meditation to release tension and anxiety.",
		Type:        QuestMeditation,
		Duration:    10,
		Difficulty:  DifficultyEasy,
		XPReward:    70,
		Moods:       []Mood{MoodStressed, MoodAnxious},
		Instructions: []string{
			"Find a comfortable seated position",
			"Close your eyes and take 3 deep breaths",
			"Focus on releasing tension with each exhale",
			"Visualize stress leaving your body",
			"Continue for the full duration",
		},
		Icon: "🧘",
	},
	{
		Title:       "Box Breathing Challenge",
		Description: "Use the 4-4-4-4 breathing technique to calm your nervous system.",
		Type:        QuestBreathing,
		Duration:    5,
		Difficulty:  DifficultyEasy,
		XPReward:    60,
		Moods:       []Mood{MoodStressed, MoodAnxious},
		Instructions: []string{
			"Breathe in for 4 counts",
			"Hold for 4 counts",
			"Breathe out for 4 counts",
			"Hold for 4 counts",
			"Repeat for 5 minutes",
		},
		Icon: "💨",
	},
	{
		Title:       "Grounding Exercise",
		Description: "Use the 5-4-3-2-1 technique to anchor yourself in the present.",
		Type:        QuestMindfulness,
		Duration:    7,
		Difficulty:  DifficultyEasy,
		XPReward:    65,
		Moods:       []Mood{MoodAnxious, MoodStressed},
		Instructions: []string{
			"Name 5 things you can see",
			"Name 4 things you can touch",
			"Name 3 things you can hear",
			"Name 2 things you can smell",
			"Name 1 thing you can taste",
			"Take deep breaths throughout",
		},
		Icon: "🌿",
	},
	{
		Title:       "Anxiety Release Meditation",
		Description: "Release anxious thoughts and find your center.",
		Type:        QuestMeditation,
		Duration:    15,
		Difficulty:  DifficultyMedium,
		XPReward:    100,
		Moods:       []Mood{MoodAnxious},
		Instructions: []string{
			"Sit comfortably with your spine straight",
			"Notice anxious thoughts without judgment",
			"Imagine each thought as a cloud passing by",
			"Return focus to your breath",
			"Continue observing and releasing",
		},
		Icon: "☁️",
	},
	{
		Title:       "Energizing Breath",
		Description: "Quick breathing exercise to boost your energy.",
		Type:        QuestBreathing,
		Duration:    3,
		Difficulty:  DifficultyEasy,
		XPReward:    50,
		Moods:       []Mood{MoodTired},
		Instructions: []string{
			"Stand or sit up straight",
			"Take quick, sharp inhales through your nose",
			"Exhale forcefully through your mouth",
			"Repeat 10 times",
			"Take 3 normal breaths between sets",
		},
		Icon: "⚡",
	},
	{
		Title:       "Body Scan Relaxation",
		Description: "Gentle body scan to restore energy and release fatigue.",
		Type:        QuestMeditation,
		Duration:    12,
		Difficulty:  DifficultyMedium,
		XPReward:    85,
		Moods:       []Mood{MoodTired},
		Instructions: []string{
			"Lie down or sit comfortably",
			"Close your eyes",
			"Scan from your toes to your head",
			"Notice areas of tension",
			"Breathe energy into tired areas",
		},
		Icon: "🌙",
	},
	{
		Title:       "Gratitude Meditation",
		Description: "Deepen your sense of peace with gratitude practice.",
		Type:        QuestMeditation,
		Duration:    10,
		Difficulty:  DifficultyEasy,
		XPReward:    75,
		Moods:       []Mood{MoodCalm, MoodNeutral},
		Instructions: []string{
			"Settle into a comfortable position",
			"Think of 3 things you're grateful for",
			"Feel the warmth of gratitude in your chest",
			"Expand this feeling throughout your body",
			"Rest in this peaceful state",
		},
		Icon: "🙏",
	},
	{
		Title:       "Mindful Walking",
		Description: "A gentle walking meditation to maintain your calm state.",
		Type:        QuestMovement,
		Duration:    8,
		Difficulty:  DifficultyEasy,
		XPReward:    70,
		Moods:       []Mood{MoodCalm, MoodNeutral},
		Instructions: []string{
			"Find a quiet space to walk",
			"Walk slowly and deliberately",
			"Notice each footstep",
			"Feel the ground beneath you",
			"Breathe naturally as you walk",
		},
		Icon: "🚶",
	},
	{
		Title:       "Dynamic Movement Flow",
		Description: "Channel your energy into mindful movement.",
		Type:        QuestMovement,
		Duration:    10,
		Difficulty:  DifficultyMedium,
		XPReward:    90,
		Moods:       []Mood{MoodEnergetic},
		Instructions: []string{
			"Stand with feet hip-width apart",
			"Flow through gentle stretches",
			"Match movement to your breath",
			"Move with intention and awareness",
			"End with 3 deep breaths",
		},
		Icon: "🏃",
	},
	{
		Title:       "Focused Concentration",
		Description: "Harness your energy for a deep focus meditation.",
		Type:        QuestMeditation,
		Duration:    15,
		Difficulty:  DifficultyHard,
		XPReward:    120,
		Moods:       []Mood{MoodEnergetic, MoodCalm},
		Instructions: []string{
			"Sit in an alert, upright position",
			"Choose a single point of focus",
			"Could be your breath, a mantra, or a visual point",
			"When your mind wanders, gently return",
			"Maintain focus for the full duration",
		},
		Icon: "🎯",
	},
	{
		Title:       "Beginner's Breath",
		Description: "Simple breathing practice for any mood.",
		Type:        QuestBreathing,
		Duration:    5,
		Difficulty:  DifficultyEasy,
		XPReward:    55,
		Moods:       []Mood{MoodNeutral, MoodCalm, MoodStressed},
		Instructions: []string{
			"Sit comfortably",
			"Breathe naturally",
			"Simply observe your breath",
			"Count each exhale up to 10",
			"Start over when you reach 10",
		},
		Icon: "🌬️",
	},
	{
		Title:       "Present Moment Awareness",
		Description: "Basic mindfulness practice to center yourself.",
		Type:        QuestMindfulness,
		Duration:    10,
		Difficulty:  DifficultyMedium,
		XPReward:    80,
		Moods:       []Mood{MoodNeutral, MoodCalm, MoodAnxious},
		Instructions: []string{
			"Settle into a comfortable position",
			"Notice what's happening right now",
			"Observe thoughts, feelings, and sensations",
			"Don't try to change anything",
			"Simply be present",
		},
		Icon: "✨",
	},
}

func init() {
	for i := range QuestTemplates {
		QuestTemplates[i].ID = slug.Make(QuestTemplates[i].Title)
	}
}

func (q Quest) ServesMood(mood Mood) bool {
	for _, m := range q.Moods {
		if m == mood {
			return true
		}
	}
	return false
}
